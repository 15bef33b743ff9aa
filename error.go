package ble

// AttError is an Attribute Protocol status code returned to the link layer
// for each handled request [Vol 3, Part F, 3.4.1.1].
type AttError byte

const (
	ErrSuccess           AttError = 0x00 // ErrSuccess means the operation succeeded.
	ErrInvalidHandle     AttError = 0x01 // ErrInvalidHandle means the attribute handle given was not valid on this server.
	ErrReadNotPerm       AttError = 0x02 // ErrReadNotPerm means the attribute cannot be read.
	ErrWriteNotPerm      AttError = 0x03 // ErrWriteNotPerm means the attribute cannot be written.
	ErrInvalidPDU        AttError = 0x04 // ErrInvalidPDU means the attribute PDU was malformed.
	ErrReqNotSupp        AttError = 0x06 // ErrReqNotSupp means the server does not support the request received from the client.
	ErrInvalidOffset     AttError = 0x07 // ErrInvalidOffset means the specified offset was past the end of the attribute.
	ErrInvalAttrValueLen AttError = 0x0d // ErrInvalAttrValueLen means the attribute value length is invalid for the operation.
	ErrUnlikely          AttError = 0x0e // ErrUnlikely means the request encountered an error that was unlikely, and could not be completed.
	ErrInsuffResources   AttError = 0x11 // ErrInsuffResources means insufficient resources to complete the request.
	ErrGeneric           AttError = 0x80 // ErrGeneric is the application error reported when a forwarded operation fails.
)

func (a AttError) Error() string {
	if s, ok := errName[a]; ok {
		return s
	}
	switch i := int(a); {
	case i >= 0x80 && i <= 0x9F:
		return "application error"
	case i >= 0xE0:
		return "profile or service error"
	default:
		return "reserved error code"
	}
}

var errName = map[AttError]string{
	ErrSuccess:           "success",
	ErrInvalidHandle:     "invalid handle",
	ErrReadNotPerm:       "read not permitted",
	ErrWriteNotPerm:      "write not permitted",
	ErrInvalidPDU:        "invalid PDU",
	ErrReqNotSupp:        "request not supported",
	ErrInvalidOffset:     "invalid offset",
	ErrInvalAttrValueLen: "invalid attribute value length",
	ErrUnlikely:          "unlikely error",
	ErrInsuffResources:   "insufficient resources",
	ErrGeneric:           "application error",
}
