package att

import (
	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

// An OTAHandler takes over writes addressed to the OTA upgrade handles.
type OTAHandler interface {
	// Routes reports whether writes to handle belong to the OTA service.
	Routes(handle uint16) bool

	// HandleWrite applies a write to one of the routed handles.
	HandleWrite(handle uint16, value []byte) ble.AttError

	// HandleConfirmation reacts to the client's confirmation of the final
	// OTA indication.
	HandleConfirmation()
}

// handleWrite applies a write request or command. Writes to the OTA handle
// set are forwarded to the OTA handler; everything else lands in the
// store. Only a successful write request is acknowledged — commands and
// signed commands are fire-and-forget regardless of outcome.
func (s *Server) handleWrite(req *ble.AttributeRequest) (ble.AttError, uint16) {
	var st ble.AttError
	if s.ota != nil && s.ota.Routes(req.Handle) {
		st = s.ota.HandleWrite(req.Handle, req.Value)
	} else {
		st = s.store.SetValue(req.Handle, req.Value)
	}

	if st == ble.ErrSuccess && req.Opcode == ble.WriteRequestCode {
		s.resp.SendWriteRsp(req.ConnID, req.Opcode, req.Handle)
	}
	return st, req.Handle
}
