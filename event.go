package ble

// Opcode identifies one ATT operation carried by an attribute request
// [Vol 3, Part F, 3.4.8].
type Opcode byte

const (
	ExchangeMTURequestCode          Opcode = 0x02
	ReadByTypeRequestCode           Opcode = 0x08
	ReadRequestCode                 Opcode = 0x0a
	ReadBlobRequestCode             Opcode = 0x0c
	ReadMultipleRequestCode         Opcode = 0x0e
	WriteRequestCode                Opcode = 0x12
	PrepareWriteRequestCode         Opcode = 0x16
	ExecuteWriteRequestCode         Opcode = 0x18
	HandleValueNotificationCode     Opcode = 0x1b
	HandleValueConfirmationCode     Opcode = 0x1e
	ReadMultipleVariableRequestCode Opcode = 0x20
	WriteCommandCode                Opcode = 0x52
	SignedWriteCommandCode          Opcode = 0xd2
)

// Client characteristic configuration descriptor bits.
const (
	CCCNotify   uint16 = 0x0001
	CCCIndicate uint16 = 0x0002
)

// EventKind tags one link-layer event delivered to the dispatcher.
// The set is closed; the link layer produces nothing else.
type EventKind int

const (
	// EvtConnection reports an established or terminated connection.
	EvtConnection EventKind = iota

	// EvtAttributeRequest carries one ATT request from the peer.
	EvtAttributeRequest

	// EvtAdvertisingState reports a change of the advertising mode,
	// as observed by the link layer.
	EvtAdvertisingState
)

// ConnectionStatus is the payload of an EvtConnection event.
type ConnectionStatus struct {
	Connected   bool
	ConnID      uint16
	PeerAddress [6]byte
}

// AttributeRequest is the payload of an EvtAttributeRequest event.
// Which fields are meaningful depends on Opcode. Cap is the negotiated
// maximum response length for this exchange; no handler writes past it.
type AttributeRequest struct {
	ConnID uint16
	Opcode Opcode
	Cap    int

	// Read, ReadBlob, Write*.
	Handle uint16
	Offset uint16
	Value  []byte

	// ReadByType.
	StartHandle uint16
	EndHandle   uint16
	Type        UUID

	// ReadMultiple and its variable-length variant, in client order.
	Handles []uint16

	// ExchangeMTU.
	ClientRxMTU uint16
}

// Event is one link-layer event. Exactly one payload field is set,
// selected by Kind.
type Event struct {
	Kind          EventKind
	Connection    ConnectionStatus
	Request       *AttributeRequest
	AdvertisingOn bool
}
