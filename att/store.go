package att

import (
	"sync"

	log "github.com/sirupsen/logrus"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

// An Attribute is one row of the GATT database: a handle-addressed,
// length-bounded value buffer. The handle, type, and capacity are fixed at
// construction; the value is guarded by the attribute's own lock, since
// the battery task writes it while the dispatcher serves reads. Bytes past
// the current length up to capacity are kept zero so variable-length reads
// are deterministic.
type Attribute struct {
	handle uint16
	typ    ble.UUID

	mu     sync.Mutex
	value  []byte // len(value) is the capacity
	length int
}

// NewAttribute returns an attribute with the given capacity, pre-loaded
// with initial. It panics if initial exceeds the capacity; the table is
// built once at startup from static data.
func NewAttribute(handle uint16, typ ble.UUID, capacity int, initial []byte) *Attribute {
	if len(initial) > capacity {
		panic("att: initial value exceeds capacity")
	}
	a := &Attribute{
		handle: handle,
		typ:    typ,
		value:  make([]byte, capacity),
		length: len(initial),
	}
	copy(a.value, initial)
	return a
}

// Handle returns the attribute's handle.
func (a *Attribute) Handle() uint16 { return a.handle }

// Type returns the attribute's type UUID.
func (a *Attribute) Type() ble.UUID { return a.typ }

// Len returns the current value length.
func (a *Attribute) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.length
}

// Cap returns the capacity of the backing buffer.
func (a *Attribute) Cap() int { return len(a.value) }

// Value returns a copy of the current value, taken as one consistent
// observation. The caller owns the copy.
func (a *Attribute) Value() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := make([]byte, a.length)
	copy(v, a.value)
	return v
}

// setValue replaces the value, updates the length, and zero-fills the
// remaining capacity, all under the attribute's lock.
func (a *Attribute) setValue(value []byte) {
	a.mu.Lock()
	a.length = len(value)
	copy(a.value, value)
	for i := a.length; i < len(a.value); i++ {
		a.value[i] = 0
	}
	a.mu.Unlock()
}

// A SetValueHook observes a successful SetValue on one handle. The battery
// profile uses it to record CCCD subscription changes.
type SetValueHook func(handle uint16, value []byte)

// A Store is the fixed attribute table, created once at startup and never
// resized. Lookups are a linear search: the table holds tens of entries,
// so no index structure is warranted. The table and the hook map are
// immutable after startup; per-value synchronization lives in Attribute.
type Store struct {
	attrs []*Attribute // ascending handle order
	hooks map[uint16]SetValueHook
}

// NewStore builds a store from attributes in ascending handle order.
func NewStore(attrs ...*Attribute) *Store {
	return &Store{attrs: attrs, hooks: make(map[uint16]SetValueHook)}
}

// SetHook registers h to run after each successful SetValue on handle.
// Hooks are registered during profile construction, before dispatch starts.
func (s *Store) SetHook(handle uint16, h SetValueHook) {
	s.hooks[handle] = h
}

// Find returns the attribute with the given handle, or nil.
func (s *Store) Find(handle uint16) *Attribute {
	for _, a := range s.attrs {
		if a.handle == handle {
			return a
		}
	}
	return nil
}

// FindByType returns the first handle in [start, end] whose attribute type
// equals typ, or 0 if there is none.
func (s *Store) FindByType(start, end uint16, typ ble.UUID) uint16 {
	for _, a := range s.attrs {
		if a.handle < start || a.handle > end {
			continue
		}
		if a.typ.Equal(typ) {
			return a.handle
		}
	}
	return 0
}

// SetValue replaces the value of the attribute with the given handle.
// The value is copied in, the current length updated, and the tail of the
// buffer zero-filled. A nil value is rejected; an empty non-nil value is a
// legal zero-length write.
func (s *Store) SetValue(handle uint16, value []byte) ble.AttError {
	if value == nil {
		return ble.ErrInvalidPDU
	}

	a := s.Find(handle)
	if a == nil {
		return ble.ErrInvalidHandle
	}
	if len(value) > a.Cap() {
		return ble.ErrInvalAttrValueLen
	}

	a.setValue(value)

	if h := s.hooks[handle]; h != nil {
		h(handle, value)
	}
	return ble.ErrSuccess
}

// Dump logs the attribute table.
func (s *Store) Dump() {
	log.Debugf("att: attribute table:")
	for _, a := range s.attrs {
		log.Debugf("att: 0x%04X\t%s\t[ % X ]", a.handle, a.typ, a.Value())
	}
}
