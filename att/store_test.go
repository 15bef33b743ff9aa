package att

import (
	"bytes"
	"testing"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

func TestStoreSetValue(t *testing.T) {
	s := NewStore(
		NewAttribute(1, ble.UUID16(0x2A19), 4, []byte{0xAA, 0xBB, 0xCC, 0xDD}),
	)

	if st := s.SetValue(1, []byte{0x11, 0x22}); st != ble.ErrSuccess {
		t.Fatalf("SetValue: got %v want success", st)
	}
	a := s.Find(1)
	if a.Len() != 2 {
		t.Errorf("Len: got %d want 2", a.Len())
	}
	if !bytes.Equal(a.Value(), []byte{0x11, 0x22}) {
		t.Errorf("Value: got [% X]", a.Value())
	}
	// The tail past the new length is zeroed.
	if a.value[2] != 0 || a.value[3] != 0 {
		t.Errorf("tail not zeroed: [% X]", a.value)
	}
}

func TestStoreSetValueTooLong(t *testing.T) {
	s := NewStore(NewAttribute(1, ble.UUID16(0x2A19), 2, []byte{0x01, 0x02}))

	if st := s.SetValue(1, []byte{1, 2, 3}); st != ble.ErrInvalAttrValueLen {
		t.Fatalf("got %v want invalid attribute value length", st)
	}
	if a := s.Find(1); !bytes.Equal(a.Value(), []byte{0x01, 0x02}) {
		t.Errorf("rejected write changed value: [% X]", a.Value())
	}
}

func TestStoreSetValueNil(t *testing.T) {
	s := NewStore(NewAttribute(1, ble.UUID16(0x2A19), 2, nil))

	if st := s.SetValue(1, nil); st != ble.ErrInvalidPDU {
		t.Errorf("nil value: got %v want invalid PDU", st)
	}
	if st := s.SetValue(1, []byte{}); st != ble.ErrSuccess {
		t.Errorf("empty value: got %v want success", st)
	}
	if st := s.SetValue(9, []byte{1}); st != ble.ErrInvalidHandle {
		t.Errorf("unknown handle: got %v want invalid handle", st)
	}
}

func TestStoreHook(t *testing.T) {
	s := NewStore(NewAttribute(7, ble.UUID16(0x2902), 2, []byte{0, 0}))

	var gotHandle uint16
	var gotValue []byte
	s.SetHook(7, func(handle uint16, value []byte) {
		gotHandle = handle
		gotValue = value
	})

	s.SetValue(7, []byte{0x01, 0x00})
	if gotHandle != 7 || !bytes.Equal(gotValue, []byte{0x01, 0x00}) {
		t.Errorf("hook saw handle=%d value=[% X]", gotHandle, gotValue)
	}

	// The hook does not fire for a rejected write.
	gotHandle = 0
	s.SetValue(7, []byte{1, 2, 3})
	if gotHandle != 0 {
		t.Error("hook fired for rejected write")
	}
}

func TestStoreConcurrentReadWrite(t *testing.T) {
	s := NewStore(NewAttribute(1, ble.UUID16(0x2A19), 3, []byte{1, 1}))

	short := []byte{1, 1}
	long := []byte{2, 2, 2}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				s.SetValue(1, long)
			} else {
				s.SetValue(1, short)
			}
		}
	}()

	// Every snapshot must be one of the two written values, never a torn
	// mix of length and content.
	a := s.Find(1)
	for i := 0; i < 1000; i++ {
		v := a.Value()
		if !bytes.Equal(v, short) && !bytes.Equal(v, long) {
			t.Fatalf("torn read: [% X]", v)
		}
	}
	<-done
}

func TestStoreFindByType(t *testing.T) {
	typ := ble.UUID16(0x2A19)
	other := ble.UUID16(0x2A00)
	s := NewStore(
		NewAttribute(1, other, 1, nil),
		NewAttribute(2, typ, 1, nil),
		NewAttribute(3, other, 1, nil),
		NewAttribute(4, typ, 1, nil),
	)

	cases := []struct {
		start, end uint16
		want       uint16
	}{
		{1, 0xFFFF, 2},
		{3, 0xFFFF, 4},
		{5, 0xFFFF, 0},
		{1, 1, 0},
		{4, 4, 4},
	}
	for _, tt := range cases {
		if got := s.FindByType(tt.start, tt.end, typ); got != tt.want {
			t.Errorf("FindByType(%d, %d): got %d want %d", tt.start, tt.end, got, tt.want)
		}
	}
}
