package adv

import (
	"bytes"
	"testing"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

func TestAdvertisement(t *testing.T) {
	bas := ble.UUID16(0x180F)
	ota := ble.MustParse("ae5d1e47-5c13-43a0-8635-82ad38a1386f")
	p := Advertisement("bat", bas)

	f, ok := p.Flags()
	if !ok || f != FlagGeneralDiscoverable|FlagLEOnly {
		t.Errorf("flags: 0x%02X ok=%v", f, ok)
	}
	if p.LocalName() != "bat" {
		t.Errorf("name: %q", p.LocalName())
	}

	uuids := p.UUIDs()
	if len(uuids) != 1 || !uuids[0].Equal(bas) {
		t.Errorf("uuids: %v", uuids)
	}

	// Name, flags, and both service UUIDs fit a legacy payload.
	p = Advertisement("bat", bas, ota)
	if p.Len() > MaxEIRPacketLength {
		t.Errorf("payload length: %d", p.Len())
	}
	uuids = p.UUIDs()
	if len(uuids) != 2 || !uuids[1].Equal(ota) {
		t.Errorf("uuids: %v", uuids)
	}
}

func TestPacketFields(t *testing.T) {
	p := Packet{}.AppendFlags(FlagLEOnly).AppendShortName("go")

	if got := p.Field(ShortName); !bytes.Equal(got, []byte("go")) {
		t.Errorf("short name field: [% X]", got)
	}
	if got := p.Field(TxPower); got != nil {
		t.Errorf("missing field: [% X]", got)
	}
	if p.LocalName() != "go" {
		t.Errorf("local name: %q", p.LocalName())
	}

	// Truncated packets parse to nothing instead of panicking.
	trunc := Packet{5, CompleteName, 'a'}
	if got := trunc.Field(CompleteName); got != nil {
		t.Errorf("truncated field: [% X]", got)
	}
}
