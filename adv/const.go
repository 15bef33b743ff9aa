package adv

// MaxEIRPacketLength is the maximum allowed AdvertisingPacket
// and ScanResponsePacket length.
const MaxEIRPacketLength = 31

// Advertising data fields
const (
	Flags        = 0x01 // Flags
	SomeUUID16   = 0x02 // Incomplete List of 16-bit Service Class UUIDs
	AllUUID16    = 0x03 // Complete List of 16-bit Service Class UUIDs
	SomeUUID32   = 0x04 // Incomplete List of 32-bit Service Class UUIDs
	AllUUID32    = 0x05 // Complete List of 32-bit Service Class UUIDs
	SomeUUID128  = 0x06 // Incomplete List of 128-bit Service Class UUIDs
	AllUUID128   = 0x07 // Complete List of 128-bit Service Class UUIDs
	ShortName    = 0x08 // Shortened Local Name
	CompleteName = 0x09 // Complete Local Name
	TxPower      = 0x0A // Tx Power Level
)

// Advertising flags
const (
	FlagLimitedDiscoverable = 0x01 // LE Limited Discoverable Mode
	FlagGeneralDiscoverable = 0x02 // LE General Discoverable Mode
	FlagLEOnly              = 0x04 // BR/EDR Not Supported
)
