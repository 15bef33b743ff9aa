package att

import (
	log "github.com/sirupsen/logrus"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

// A ConnectionHandler consumes connection and advertising state events.
type ConnectionHandler interface {
	HandleConnection(ble.ConnectionStatus)
	HandleAdvertisingState(on bool)
}

// Server dispatches link-layer events to the read/write engines and the
// connection and OTA state machines. The link layer delivers events one at
// a time, so Dispatch runs on a single serialized context and needs no
// internal locking.
type Server struct {
	store *Store
	resp  Responder
	conn  ConnectionHandler
	ota   OTAHandler
	rxMTU uint16
}

// NewServer returns a dispatcher over the given collaborators. rxMTU is
// the server's configured maximum receive PDU size, echoed on MTU
// exchange; 0 selects DefaultMTU.
func NewServer(store *Store, resp Responder, conn ConnectionHandler, ota OTAHandler, rxMTU uint16) *Server {
	if rxMTU == 0 {
		rxMTU = DefaultMTU
	}
	if rxMTU > MaxMTU {
		rxMTU = MaxMTU
	}
	return &Server{store: store, resp: resp, conn: conn, ota: ota, rxMTU: rxMTU}
}

// Store returns the server's attribute table.
func (s *Server) Store() *Store { return s.store }

// Dispatch routes one link-layer event. For attribute requests, a
// non-success result is reported to the client as an error response
// carrying the implicated handle.
func (s *Server) Dispatch(e ble.Event) {
	switch e.Kind {
	case ble.EvtConnection:
		s.conn.HandleConnection(e.Connection)
	case ble.EvtAdvertisingState:
		s.conn.HandleAdvertisingState(e.AdvertisingOn)
	case ble.EvtAttributeRequest:
		req := e.Request
		st, errHandle := s.handleRequest(req)
		if st != ble.ErrSuccess {
			s.resp.SendError(req.ConnID, req.Opcode, errHandle, st)
		}
	default:
		log.Errorf("att: unhandled event kind %d", e.Kind)
	}
}

func (s *Server) handleRequest(req *ble.AttributeRequest) (ble.AttError, uint16) {
	switch req.Opcode {
	case ble.ReadRequestCode, ble.ReadBlobRequestCode:
		return s.handleRead(req)

	case ble.ReadByTypeRequestCode:
		return s.handleReadByType(req)

	case ble.ReadMultipleRequestCode, ble.ReadMultipleVariableRequestCode:
		return s.handleReadMulti(req)

	case ble.WriteRequestCode, ble.WriteCommandCode, ble.SignedWriteCommandCode:
		return s.handleWrite(req)

	case ble.PrepareWriteRequestCode:
		// Queued writes are acknowledged but not queued.
		return ble.ErrSuccess, req.Handle

	case ble.ExecuteWriteRequestCode:
		s.resp.SendExecWriteRsp(req.ConnID, req.Opcode)
		return ble.ErrSuccess, req.Handle

	case ble.ExchangeMTURequestCode:
		s.resp.SendMTURsp(req.ConnID, req.ClientRxMTU, s.rxMTU)
		return ble.ErrSuccess, req.Handle

	case ble.HandleValueConfirmationCode:
		if s.ota != nil {
			s.ota.HandleConfirmation()
		}
		return ble.ErrSuccess, req.Handle

	case ble.HandleValueNotificationCode:
		return ble.ErrSuccess, req.Handle

	default:
		return ble.ErrReqNotSupp, req.Handle
	}
}
