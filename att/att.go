// Package att implements the server side of the Attribute Protocol: the
// attribute table, the read and write engines, and the request dispatcher.
package att

import (
	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

// DefaultMTU is the default (and mandatory minimum) ATT_MTU of 23 bytes.
const DefaultMTU = 23

// MaxMTU bounds the negotiated ATT_MTU. The maximum length of an attribute
// value shall be 512 octets [Vol 3, Part F, 3.2.9].
const MaxMTU = 512

// A Responder is the transport-facing side of the link layer. Byte slices
// passed to a Send method are owned by the responder from the call onward:
// it releases them on its send-completion event, and the caller must not
// touch them again.
type Responder interface {
	// SendError sends an error response for the given request opcode,
	// carrying the implicated handle.
	SendError(connID uint16, op ble.Opcode, handle uint16, status ble.AttError)

	// SendReadRsp answers a read or read-blob request.
	SendReadRsp(connID uint16, op ble.Opcode, value []byte) ble.AttError

	// SendReadByTypeRsp answers a read-by-type request. Every packed pair
	// in data is pairLen bytes.
	SendReadByTypeRsp(connID uint16, op ble.Opcode, pairLen int, data []byte) ble.AttError

	// SendReadMultiRsp answers a read-multiple request.
	SendReadMultiRsp(connID uint16, op ble.Opcode, data []byte) ble.AttError

	// SendWriteRsp acknowledges a write request.
	SendWriteRsp(connID uint16, op ble.Opcode, handle uint16)

	// SendExecWriteRsp acknowledges an execute-write request.
	SendExecWriteRsp(connID uint16, op ble.Opcode)

	// SendMTURsp answers an MTU exchange with the server's receive MTU.
	SendMTURsp(connID uint16, clientRxMTU, serverRxMTU uint16)

	// Notify sends a handle value notification.
	Notify(connID uint16, handle uint16, value []byte) (int, error)
}
