// Package gatt builds the server's attribute table from a service tree.
package gatt

import (
	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
	"github.com/galudino/mtb-bluetooth-le-battery-server/att"
)

// Property ...
type Property int

// Characteristic property flags (spec 3.3.3.1)
const (
	CharBroadcast   Property = 0x01 // may be brocasted
	CharRead        Property = 0x02 // may be read
	CharWriteNR     Property = 0x04 // may be written to, with no reply
	CharWrite       Property = 0x08 // may be written to, with a reply
	CharNotify      Property = 0x10 // supports notifications
	CharIndicate    Property = 0x20 // supports Indications
	CharSignedWrite Property = 0x40 // supports signed write
	CharExtended    Property = 0x80 // supports extended properties
)

var (
	attrPrimaryServiceUUID             = ble.UUID16(0x2800)
	attrCharacteristicUUID             = ble.UUID16(0x2803)
	attrClientCharacteristicConfigUUID = ble.UUID16(0x2902)
)

// A Service is one primary service and its characteristics.
type Service struct {
	uuid  ble.UUID
	chars []*Characteristic

	h    uint16
	endh uint16
}

// NewService ...
func NewService(u ble.UUID) *Service {
	return &Service{uuid: u}
}

// UUID ...
func (s *Service) UUID() ble.UUID { return s.uuid }

// Handle returns the service declaration handle after generation.
func (s *Service) Handle() uint16 { return s.h }

// AddCharacteristic adds a characteristic with a value buffer of the
// given capacity, preloaded with initial.
func (s *Service) AddCharacteristic(u ble.UUID, props Property, capacity int, initial []byte) *Characteristic {
	c := &Characteristic{uuid: u, props: props, cap: capacity, initial: initial}
	s.chars = append(s.chars, c)
	return c
}

// A Characteristic is one characteristic declaration plus its value
// attribute and descriptors.
type Characteristic struct {
	uuid    ble.UUID
	props   Property
	cap     int
	initial []byte
	descs   []*Descriptor

	h  uint16
	vh uint16
}

// UUID ...
func (c *Characteristic) UUID() ble.UUID { return c.uuid }

// Properties ...
func (c *Characteristic) Properties() Property { return c.props }

// ValueHandle returns the value attribute handle after generation.
func (c *Characteristic) ValueHandle() uint16 { return c.vh }

// AddDescriptor ...
func (c *Characteristic) AddDescriptor(u ble.UUID, capacity int, initial []byte) *Descriptor {
	d := &Descriptor{uuid: u, cap: capacity, initial: initial}
	c.descs = append(c.descs, d)
	return d
}

// AddCCCD adds a client characteristic configuration descriptor, zeroed.
func (c *Characteristic) AddCCCD() *Descriptor {
	return c.AddDescriptor(attrClientCharacteristicConfigUUID, 2, []byte{0, 0})
}

// A Descriptor is one characteristic descriptor attribute.
type Descriptor struct {
	uuid    ble.UUID
	cap     int
	initial []byte

	h uint16
}

// UUID ...
func (d *Descriptor) UUID() ble.UUID { return d.uuid }

// Handle returns the descriptor handle after generation.
func (d *Descriptor) Handle() uint16 { return d.h }

// GenerateAttributes lays the services out as a dense handle range
// starting at base and returns the populated attribute table.
func GenerateAttributes(ss []*Service, base uint16) *att.Store {
	var attrs []*att.Attribute
	h := base
	for _, s := range ss {
		h = genSvcAttr(s, h, &attrs)
	}
	store := att.NewStore(attrs...)
	store.Dump()
	return store
}

func genSvcAttr(s *Service, h uint16, attrs *[]*att.Attribute) uint16 {
	s.h = h
	v := s.uuid
	*attrs = append(*attrs, att.NewAttribute(h, attrPrimaryServiceUUID, len(v), v))
	h++

	for _, c := range s.chars {
		h = genCharAttr(c, h, attrs)
	}
	s.endh = h - 1
	return h
}

func genCharAttr(c *Characteristic, h uint16, attrs *[]*att.Attribute) uint16 {
	c.h = h
	c.vh = h + 1

	decl := append([]byte{byte(c.props), byte(c.vh), byte(c.vh >> 8)}, c.uuid...)
	*attrs = append(*attrs, att.NewAttribute(c.h, attrCharacteristicUUID, len(decl), decl))
	*attrs = append(*attrs, att.NewAttribute(c.vh, c.uuid, c.cap, c.initial))
	h += 2

	for _, d := range c.descs {
		d.h = h
		*attrs = append(*attrs, att.NewAttribute(d.h, d.uuid, d.cap, d.initial))
		h++
	}
	return h
}
