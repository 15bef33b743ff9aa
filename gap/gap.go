// Package gap tracks the server's link state and keeps the advertiser and
// the status LED in step with it.
package gap

import (
	"github.com/mgutz/logxi/v1"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
	"github.com/galudino/mtb-bluetooth-le-battery-server/led"
)

var logger = log.New("gap")

// State is the connection/advertising state of the server.
type State int

const (
	// DisconnectedIdle means no central is connected and advertising is
	// off. The device is unreachable until advertising restarts.
	DisconnectedIdle State = iota

	// DisconnectedAdvertising means no central is connected and the
	// device is advertising for one.
	DisconnectedAdvertising

	// Connected means a central holds the (single) connection.
	Connected
)

func (s State) String() string {
	switch s {
	case DisconnectedIdle:
		return "disconnected, not advertising"
	case DisconnectedAdvertising:
		return "disconnected, advertising"
	case Connected:
		return "connected"
	}
	return "unknown"
}

// An Advertiser starts undirected advertising. Stopping is the link
// layer's business; the controller stops on its own when a central
// connects.
type Advertiser interface {
	StartAdvertising() error
}

// Machine mirrors link-layer connection and advertising events into the
// shared session, the advertiser, and the LED. It runs on the dispatcher
// context; the session is the only state shared with other goroutines.
type Machine struct {
	session *ble.Session
	adv     Advertiser
	ind     led.Indicator
	state   State
}

// NewMachine returns a machine in the idle state.
func NewMachine(session *ble.Session, adv Advertiser, ind led.Indicator) *Machine {
	return &Machine{session: session, adv: adv, ind: ind, state: DisconnectedIdle}
}

// State returns the current link state.
func (m *Machine) State() State { return m.state }

// HandleConnection reacts to a connection up/down event. A disconnect
// immediately restarts advertising; if that fails the device would be
// unreachable until a power cycle, so the failure is fatal.
func (m *Machine) HandleConnection(c ble.ConnectionStatus) {
	if c.Connected {
		m.session.SetConnected(c.ConnID, c.PeerAddress)
		m.transition(Connected)
		logger.Info("connected", "conn", c.ConnID, "peer", m.session.PeerAddress())
		return
	}

	logger.Info("disconnected", "conn", c.ConnID)
	m.session.ClearConnection()
	if err := m.adv.StartAdvertising(); err != nil {
		logger.Fatal("can't restart advertising", "err", err)
	}
	m.transition(DisconnectedAdvertising)
}

// HandleAdvertisingState reacts to the controller reporting advertising
// on or off. Advertising stops either because a central connected or
// because it was switched off; the session tells the two apart.
func (m *Machine) HandleAdvertisingState(on bool) {
	if on {
		m.transition(DisconnectedAdvertising)
		return
	}
	if m.session.Connected() {
		m.transition(Connected)
		return
	}
	m.transition(DisconnectedIdle)
}

func (m *Machine) transition(next State) {
	m.state = next
	m.updateIndicator()
}

// updateIndicator reprograms the LED for the current state. Indicator
// failures are logged and swallowed; the LED is cosmetic.
func (m *Machine) updateIndicator() {
	var d led.DutyCycle
	switch m.state {
	case DisconnectedIdle:
		d = led.DutyOff
	case DisconnectedAdvertising:
		d = led.DutyBlinking
	case Connected:
		d = led.DutyOn
	}

	if err := m.ind.Stop(); err != nil {
		logger.Warn("indicator stop", "err", err)
	}
	if err := m.ind.SetBlinkRate(d); err != nil {
		logger.Warn("indicator rate", "err", err)
	}
	if err := m.ind.Start(); err != nil {
		logger.Warn("indicator start", "err", err)
	}
}
