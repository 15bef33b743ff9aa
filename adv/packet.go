// Package adv crafts and parses advertisement packets.
package adv

import (
	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

// Packet is a utility to craft or parse advertisement packets.
// Refer to Supplement to Bluetooth Core Specification | CSSv6, Part A
type Packet []byte

// Field returns the field data (excluding the initial length and typ byte).
// It returns nil, if the specified field is not found.
func (p Packet) Field(typ byte) []byte {
	b := p
	for len(b) > 0 {
		if len(b) < 2 {
			return nil
		}
		l, t := b[0], b[1]
		if len(b) < int(1+l) {
			return nil
		}
		if t == typ {
			return b[2 : 2+l-1]
		}
		b = b[1+l:]
	}
	return nil
}

// Flags ...
func (p Packet) Flags() (byte, bool) {
	b := p.Field(Flags)
	if len(b) < 1 {
		return 0, false
	}
	return b[0], true
}

// LocalName ...
func (p Packet) LocalName() string {
	if b := p.Field(ShortName); b != nil {
		return string(b)
	}
	return string(p.Field(CompleteName))
}

// UUIDs ...
func (p Packet) UUIDs() []ble.UUID {
	var u []ble.UUID
	if b := p.Field(SomeUUID16); b != nil {
		u = uuidList(u, b, 2)
	}
	if b := p.Field(AllUUID16); b != nil {
		u = uuidList(u, b, 2)
	}
	if b := p.Field(SomeUUID32); b != nil {
		u = uuidList(u, b, 4)
	}
	if b := p.Field(AllUUID32); b != nil {
		u = uuidList(u, b, 4)
	}
	if b := p.Field(SomeUUID128); b != nil {
		u = uuidList(u, b, 16)
	}
	if b := p.Field(AllUUID128); b != nil {
		u = uuidList(u, b, 16)
	}
	return u
}

// AppendField appends a BLE advertising packet field.
func (p Packet) AppendField(typ byte, b []byte) Packet {
	p = append(p, byte(len(b)+1))
	p = append(p, typ)
	return append(p, b...)
}

// AppendFlags appends a flag field to the packet.
func (p Packet) AppendFlags(f byte) Packet {
	return p.AppendField(Flags, []byte{f})
}

// AppendShortName appends a name field to the packet.
func (p Packet) AppendShortName(n string) Packet {
	return p.AppendField(ShortName, []byte(n))
}

// AppendCompleteName appends a name field to the packet.
func (p Packet) AppendCompleteName(n string) Packet {
	return p.AppendField(CompleteName, []byte(n))
}

// AppendAllUUID appends a BLE advertised service UUID
func (p Packet) AppendAllUUID(u ble.UUID) Packet {
	if u.Len() == 2 {
		return p.AppendField(AllUUID16, u)
	}
	if u.Len() == 4 {
		return p.AppendField(AllUUID32, u)
	}
	return p.AppendField(AllUUID128, u)
}

// AppendSomeUUID appends a BLE advertised service UUID
func (p Packet) AppendSomeUUID(u ble.UUID) Packet {
	if u.Len() == 2 {
		return p.AppendField(SomeUUID16, u)
	}
	if u.Len() == 4 {
		return p.AppendField(SomeUUID32, u)
	}
	return p.AppendField(SomeUUID128, u)
}

// Data ...
func (p Packet) Data() [MaxEIRPacketLength]byte {
	b := [MaxEIRPacketLength]byte{}
	copy(b[:], p)
	return b
}

// Len ...
func (p Packet) Len() int {
	return len(p)
}

// Advertisement returns the undirected advertisement payload for the
// given device name and service list.
func Advertisement(name string, uuids ...ble.UUID) Packet {
	p := Packet(make([]byte, 0, MaxEIRPacketLength))
	p = p.AppendFlags(FlagGeneralDiscoverable | FlagLEOnly)
	p = p.AppendCompleteName(name)
	for _, u := range uuids {
		p = p.AppendAllUUID(u)
	}
	return p
}

func uuidList(u []ble.UUID, d []byte, w int) []ble.UUID {
	for len(d) >= w {
		u = append(u, ble.UUID(d[:w]))
		d = d[w:]
	}
	return u
}
