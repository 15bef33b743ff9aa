// Package ota sequences the firmware-upgrade commands written to the OTA
// control point. The control protocol is deliberately thin: download,
// verify, and flash semantics all live in the external agent, and this
// machine only validates the command order and keeps the GATT-visible
// handle set consistent with agent state.
package ota

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

// Command is one upgrade command byte written to the control point value.
// The set is closed; unrecognized bytes are rejected, not ignored.
type Command byte

const (
	CommandPrepareDownload Command = 1
	CommandDownload        Command = 2
	CommandVerify          Command = 3
	CommandAbort           Command = 4
)

// State of the upgrade sequence.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateDownloading
	StateVerifying
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateDownloading:
		return "downloading"
	case StateVerifying:
		return "verifying"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// Handles is the OTA upgrade service handle set routed to this machine.
type Handles struct {
	ControlPointCCCD uint16
	ControlPoint     uint16
	Data             uint16
}

// tagValid marks an initialized machine; a mismatch means the machine was
// never set up and prepare_download must fail.
const tagValid = 0x51EDBA15

var errBadTag = errors.New("ota: context tag invalid")

// Machine drives one upgrade session at a time. It is owned by the
// dispatcher goroutine; only the subscription bitmap crosses to other
// goroutines, and it does so through the shared Session.
type Machine struct {
	handles   Handles
	agent     Agent
	restarter Restarter
	session   *ble.Session

	// RebootDelay is slept before restarting after a confirmed complete
	// upgrade, leaving the link layer time to flush the final exchange.
	RebootDelay time.Duration

	tag              uint32
	state            State
	configDescriptor uint16
	rebootAtEnd      bool
	sess             AgentSession
}

// NewMachine returns an idle machine routing the given handle set.
func NewMachine(h Handles, agent Agent, restarter Restarter, session *ble.Session) *Machine {
	return &Machine{
		handles:     h,
		agent:       agent,
		restarter:   restarter,
		session:     session,
		RebootDelay: time.Second,
		tag:         tagValid,
		state:       StateIdle,
	}
}

// State returns the current sequence state.
func (m *Machine) State() State { return m.state }

// ConfigDescriptor returns the recorded control-point subscription bitmap.
func (m *Machine) ConfigDescriptor() uint16 { return m.configDescriptor }

// Routes reports whether writes to handle belong to this machine.
func (m *Machine) Routes(handle uint16) bool {
	switch handle {
	case m.handles.ControlPointCCCD, m.handles.ControlPoint, m.handles.Data:
		return true
	}
	return false
}

// HandleWrite applies one write addressed to the OTA handle set.
func (m *Machine) HandleWrite(handle uint16, value []byte) ble.AttError {
	switch handle {
	case m.handles.ControlPointCCCD:
		if len(value) == 0 {
			return ble.ErrInvalidPDU
		}
		// Record the notify/indicate subscription only; no transition.
		m.configDescriptor = uint16(value[0])
		return ble.ErrSuccess

	case m.handles.ControlPoint:
		if len(value) == 0 {
			return ble.ErrInvalidPDU
		}
		return m.handleCommand(Command(value[0]), value[1:])

	case m.handles.Data:
		if m.sess == nil {
			return ble.ErrGeneric
		}
		if err := m.sess.Write(value); err != nil {
			log.Errorf("ota: data intake: %v", err)
			return ble.ErrGeneric
		}
		return ble.ErrSuccess
	}
	return ble.ErrReqNotSupp
}

func (m *Machine) handleCommand(cmd Command, payload []byte) ble.AttError {
	switch cmd {
	case CommandPrepareDownload:
		if err := m.startAgent(); err != nil {
			log.Errorf("ota: prepare: %v", err)
			return ble.ErrGeneric
		}
		connID, _ := m.session.Snapshot()
		if err := m.sess.Prepare(connID, m.configDescriptor); err != nil {
			log.Errorf("ota: prepare: %v", err)
			m.release()
			return ble.ErrGeneric
		}
		m.state = StatePreparing
		return ble.ErrSuccess

	case CommandDownload:
		if m.sess == nil || (m.state != StatePreparing && m.state != StateDownloading) {
			return ble.ErrGeneric
		}
		connID, _ := m.session.Snapshot()
		if err := m.sess.Download(payload, connID, m.configDescriptor); err != nil {
			log.Errorf("ota: download: %v", err)
			return ble.ErrGeneric
		}
		m.state = StateDownloading
		return ble.ErrSuccess

	case CommandVerify:
		if m.sess == nil || m.state != StateDownloading {
			return ble.ErrGeneric
		}
		connID, _ := m.session.Snapshot()
		if err := m.sess.Verify(payload, connID); err != nil {
			log.Errorf("ota: verify: %v", err)
			return ble.ErrGeneric
		}
		m.state = StateVerifying
		return ble.ErrSuccess

	case CommandAbort:
		if m.sess != nil {
			if err := m.sess.Abort(); err != nil {
				log.Errorf("ota: abort: %v", err)
			}
		}
		m.release()
		return ble.ErrSuccess
	}
	return ble.ErrReqNotSupp
}

// startAgent validates the session tag and starts the external agent.
// An agent start failure is fatal: continuing mid-update in an undefined
// state would be worse than halting a headless device.
func (m *Machine) startAgent() error {
	if m.tag != tagValid {
		return errors.Wrap(errBadTag, "prepare_download")
	}
	m.rebootAtEnd = true
	sess, err := m.agent.Start(Params{RebootAfterOTA: true, ValidateAfterReboot: true})
	if err != nil {
		log.Fatalf("ota: can't start agent: %v", err)
	}
	m.sess = sess
	return nil
}

// HandleConfirmation reacts to the client's confirmation of the final
// upgrade indication. A completed upgrade restarts the device after
// RebootDelay when the reboot policy is set; anything else stops the
// agent and returns to idle.
func (m *Machine) HandleConfirmation() {
	if m.sess == nil {
		return
	}
	if m.sess.State() == AgentComplete && m.rebootAtEnd {
		m.state = StateComplete
		time.Sleep(m.RebootDelay)
		m.restarter.Restart()
		return
	}
	m.sess.Stop()
	m.release()
}

func (m *Machine) release() {
	m.sess = nil
	m.state = StateIdle
}
