package gatt

import (
	"encoding/binary"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
	"github.com/galudino/mtb-bluetooth-le-battery-server/att"
)

// Assigned numbers for the services and characteristics the server hosts.
var (
	GAPServiceUUID     = ble.UUID16(0x1800)
	GATTServiceUUID    = ble.UUID16(0x1801)
	BatteryServiceUUID = ble.UUID16(0x180F)

	DeviceNameUUID   = ble.UUID16(0x2A00)
	AppearanceUUID   = ble.UUID16(0x2A01)
	BatteryLevelUUID = ble.UUID16(0x2A19)

	OTAServiceUUID      = ble.MustParse("ae5d1e47-5c13-43a0-8635-82ad38a1386f")
	OTAControlPointUUID = ble.MustParse("a3dd50bf-f7a7-4e99-838e-570a086c661b")
	OTADataUUID         = ble.MustParse("a2e86c7a-d961-4091-b74f-2409e72efe26")
)

// DeviceName is the GAP device name presented to centrals.
const DeviceName = "Battery Server"

// InitialBatteryLevel is the level the simulated battery starts at.
const InitialBatteryLevel = 100

// Profile is the generated attribute table plus the handles the rest of
// the server addresses directly.
type Profile struct {
	Store *att.Store

	BatteryLevelValue uint16
	BatteryLevelCCCD  uint16

	OTAControlPointValue uint16
	OTAControlPointCCCD  uint16
	OTADataValue         uint16
}

// NewProfile builds the GAP, GATT, battery, and OTA upgrade services and
// wires the battery CCCD into the session's subscription bitmap.
func NewProfile(session *ble.Session) *Profile {
	gap := NewService(GAPServiceUUID)
	gap.AddCharacteristic(DeviceNameUUID, CharRead, len(DeviceName), []byte(DeviceName))
	gap.AddCharacteristic(AppearanceUUID, CharRead, 2, []byte{0, 0})

	gatt := NewService(GATTServiceUUID)

	ota := NewService(OTAServiceUUID)
	cp := ota.AddCharacteristic(OTAControlPointUUID, CharWrite|CharIndicate, 1, nil)
	cpCCCD := cp.AddCCCD()
	data := ota.AddCharacteristic(OTADataUUID, CharWrite|CharWriteNR, 1, nil)

	bas := NewService(BatteryServiceUUID)
	level := bas.AddCharacteristic(BatteryLevelUUID, CharRead|CharNotify, 1, []byte{InitialBatteryLevel})
	levelCCCD := level.AddCCCD()

	store := GenerateAttributes([]*Service{gap, gatt, ota, bas}, 1)

	store.SetHook(levelCCCD.Handle(), func(handle uint16, value []byte) {
		if len(value) < 2 {
			return
		}
		session.SetBatteryCCC(binary.LittleEndian.Uint16(value))
	})

	return &Profile{
		Store:                store,
		BatteryLevelValue:    level.ValueHandle(),
		BatteryLevelCCCD:     levelCCCD.Handle(),
		OTAControlPointValue: cp.ValueHandle(),
		OTAControlPointCCCD:  cpCCCD.Handle(),
		OTADataValue:         data.ValueHandle(),
	}
}
