package ble

import (
	"net"
	"sync"
)

// Session is the single process-wide connection session. It is created
// once at startup and never reallocated. The dispatcher goroutine writes
// it; the periodic battery task reads it. ConnID and the battery CCCD
// bitmap must be observed together, so both live under one lock and are
// read through Snapshot.
type Session struct {
	mu         sync.Mutex
	connID     uint16
	peerAddr   [6]byte
	batteryCCC uint16
}

// NewSession returns a disconnected session.
func NewSession() *Session { return &Session{} }

// SetConnected records the peer of a newly established connection.
func (s *Session) SetConnected(connID uint16, peer [6]byte) {
	s.mu.Lock()
	s.connID = connID
	s.peerAddr = peer
	s.mu.Unlock()
}

// ClearConnection resets the session on disconnect. The peer address and
// subscriptions are only valid while connected.
func (s *Session) ClearConnection() {
	s.mu.Lock()
	s.connID = 0
	s.peerAddr = [6]byte{}
	s.batteryCCC = 0
	s.mu.Unlock()
}

// ConnID returns the current connection id; 0 means no connection.
func (s *Session) ConnID() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connID
}

// Connected reports whether a peer connection is active.
func (s *Session) Connected() bool { return s.ConnID() != 0 }

// PeerAddress returns the connected peer's device address.
func (s *Session) PeerAddress() net.HardwareAddr {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := make(net.HardwareAddr, 6)
	copy(a, s.peerAddr[:])
	return a
}

// SetBatteryCCC records the battery level CCCD bitmap written by the peer.
func (s *Session) SetBatteryCCC(ccc uint16) {
	s.mu.Lock()
	s.batteryCCC = ccc
	s.mu.Unlock()
}

// Snapshot returns the connection id and battery CCCD bitmap as one
// consistent observation.
func (s *Session) Snapshot() (connID, batteryCCC uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connID, s.batteryCCC
}
