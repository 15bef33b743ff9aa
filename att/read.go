package att

import (
	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

// handleRead answers a read or read-blob request. The response is at most
// min(req.Cap, current length - offset) bytes of the stored value.
func (s *Server) handleRead(req *ble.AttributeRequest) (ble.AttError, uint16) {
	if req.Cap <= 0 {
		return ble.ErrInsuffResources, req.Handle
	}
	a := s.store.Find(req.Handle)
	if a == nil {
		return ble.ErrInvalidHandle, req.Handle
	}

	// One snapshot serves both the offset check and the response, so a
	// concurrent shrink cannot slip between them.
	val := a.Value()
	off := int(req.Offset)
	if off >= len(val) {
		return ble.ErrInvalidOffset, req.Handle
	}

	n := req.Cap
	if rem := len(val) - off; rem < n {
		n = rem
	}

	// The responder owns the buffer from the Send call onward; it is
	// released on the transport's send-completion event.
	return s.resp.SendReadRsp(req.ConnID, req.Opcode, val[off:off+n]), req.Handle
}

// handleReadByType walks [StartHandle, EndHandle] for attributes matching
// the requested type and packs (handle, value) pairs in ascending handle
// order. Every pair of one response is as long as the first pair packed; a
// pair that would not fit, or whose length differs, ends the response.
// Partial results are still sent. Resuming past the last returned handle
// is the client's responsibility.
func (s *Server) handleReadByType(req *ble.AttributeRequest) (ble.AttError, uint16) {
	if req.Cap <= 0 {
		return ble.ErrInsuffResources, req.StartHandle
	}

	rsp := make([]byte, req.Cap)
	var used, pairLen int

	h := req.StartHandle
	errHandle := h
	for {
		errHandle = h
		h = s.store.FindByType(h, req.EndHandle, req.Type)
		if h == 0 {
			break
		}

		// A matched handle missing from the table is a mismatch between
		// the store and the link layer's type index; not retried.
		a := s.store.Find(h)
		if a == nil {
			return ble.ErrInvalidHandle, h
		}

		n := putReadByTypePair(rsp, used, &pairLen, h, a.Value())
		if n == 0 {
			break
		}
		used += n
		h++
	}

	if used == 0 {
		return ble.ErrInvalidHandle, errHandle
	}
	return s.resp.SendReadByTypeRsp(req.ConnID, req.Opcode, pairLen, rsp[:used]), errHandle
}

// handleReadMulti packs the requested attributes' values in the order
// given, stopping when the next value would not fit. Unlike read-by-type,
// a missing handle aborts the whole exchange with no partial response.
func (s *Server) handleReadMulti(req *ble.AttributeRequest) (ble.AttError, uint16) {
	if len(req.Handles) == 0 {
		return ble.ErrInvalidPDU, 0
	}
	if req.Cap <= 0 {
		return ble.ErrInsuffResources, req.Handles[0]
	}

	rsp := make([]byte, req.Cap)
	used := 0

	errHandle := req.Handles[0]
	for _, h := range req.Handles {
		errHandle = h
		a := s.store.Find(h)
		if a == nil {
			return ble.ErrUnlikely, h
		}

		n, ok := putReadMultiValue(req.Opcode, rsp, used, a.Value())
		if !ok {
			break
		}
		used += n
	}

	if used == 0 {
		return ble.ErrInvalidHandle, errHandle
	}
	return s.resp.SendReadMultiRsp(req.ConnID, req.Opcode, rsp[:used]), errHandle
}
