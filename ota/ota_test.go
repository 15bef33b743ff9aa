package ota

import (
	"errors"
	"testing"
	"time"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
)

var testHandles = Handles{ControlPointCCCD: 10, ControlPoint: 11, Data: 12}

// stubSession is a scriptable agent session.
type stubSession struct {
	state AgentState

	prepareErr  error
	downloadErr error
	verifyErr   error
	writeErr    error

	prepared  int
	downloads int
	verifies  int
	writes    [][]byte
	aborts    int
	stops     int

	connID uint16
	cfg    uint16
}

func (s *stubSession) Prepare(connID, configDescriptor uint16) error {
	s.prepared++
	s.connID = connID
	s.cfg = configDescriptor
	return s.prepareErr
}

func (s *stubSession) Download(payload []byte, connID, configDescriptor uint16) error {
	s.downloads++
	return s.downloadErr
}

func (s *stubSession) Verify(payload []byte, connID uint16) error {
	s.verifies++
	return s.verifyErr
}

func (s *stubSession) Write(payload []byte) error {
	s.writes = append(s.writes, payload)
	return s.writeErr
}

func (s *stubSession) Abort() error {
	s.aborts++
	return nil
}

func (s *stubSession) State() AgentState { return s.state }

func (s *stubSession) Stop() { s.stops++ }

type stubAgent struct {
	sess   *stubSession
	starts int
	params Params
}

func (a *stubAgent) Start(p Params) (AgentSession, error) {
	a.starts++
	a.params = p
	return a.sess, nil
}

type stubRestarter struct {
	restarts int
}

func (r *stubRestarter) Restart() { r.restarts++ }

func newTestMachine() (*Machine, *stubAgent, *stubRestarter, *ble.Session) {
	sess := &stubSession{}
	agent := &stubAgent{sess: sess}
	restarter := &stubRestarter{}
	session := ble.NewSession()
	session.SetConnected(7, [6]byte{1, 2, 3, 4, 5, 6})
	m := NewMachine(testHandles, agent, restarter, session)
	m.RebootDelay = time.Millisecond
	return m, agent, restarter, session
}

func control(m *Machine, cmd Command) ble.AttError {
	return m.HandleWrite(testHandles.ControlPoint, []byte{byte(cmd)})
}

func TestRoutes(t *testing.T) {
	m, _, _, _ := newTestMachine()
	for _, h := range []uint16{10, 11, 12} {
		if !m.Routes(h) {
			t.Errorf("Routes(%d) = false", h)
		}
	}
	for _, h := range []uint16{0, 9, 13} {
		if m.Routes(h) {
			t.Errorf("Routes(%d) = true", h)
		}
	}
}

func TestUpgradeSequence(t *testing.T) {
	m, agent, _, _ := newTestMachine()

	m.HandleWrite(testHandles.ControlPointCCCD, []byte{0x02, 0x00})

	if st := control(m, CommandPrepareDownload); st != ble.ErrSuccess {
		t.Fatalf("prepare: %v", st)
	}
	if m.State() != StatePreparing {
		t.Fatalf("state after prepare: %v", m.State())
	}
	if agent.starts != 1 || !agent.params.RebootAfterOTA || !agent.params.ValidateAfterReboot {
		t.Errorf("agent start: starts=%d params=%+v", agent.starts, agent.params)
	}
	if agent.sess.connID != 7 || agent.sess.cfg != 0x0002 {
		t.Errorf("prepare handoff: conn=%d cfg=0x%04X", agent.sess.connID, agent.sess.cfg)
	}

	if st := control(m, CommandDownload); st != ble.ErrSuccess {
		t.Fatalf("download: %v", st)
	}
	if m.State() != StateDownloading {
		t.Fatalf("state after download: %v", m.State())
	}

	m.HandleWrite(testHandles.Data, []byte{1, 2, 3})
	m.HandleWrite(testHandles.Data, []byte{4, 5})
	if len(agent.sess.writes) != 2 {
		t.Errorf("data writes: %d", len(agent.sess.writes))
	}

	if st := control(m, CommandVerify); st != ble.ErrSuccess {
		t.Fatalf("verify: %v", st)
	}
	if m.State() != StateVerifying {
		t.Fatalf("state after verify: %v", m.State())
	}
}

func TestCommandOrdering(t *testing.T) {
	cases := []struct {
		name  string
		setup []Command
		cmd   Command
		want  State
	}{
		{"download before prepare", nil, CommandDownload, StateIdle},
		{"verify before prepare", nil, CommandVerify, StateIdle},
		{"verify while preparing", []Command{CommandPrepareDownload}, CommandVerify, StatePreparing},
	}

	for _, tt := range cases {
		m, _, _, _ := newTestMachine()
		for _, c := range tt.setup {
			if st := control(m, c); st != ble.ErrSuccess {
				t.Fatalf("%s: setup %d: %v", tt.name, c, st)
			}
		}
		if st := control(m, tt.cmd); st != ble.ErrGeneric {
			t.Errorf("%s: got %v want generic error", tt.name, st)
		}
		if m.State() != tt.want {
			t.Errorf("%s: state %v want %v", tt.name, m.State(), tt.want)
		}
	}
}

func TestDownloadRepeats(t *testing.T) {
	m, _, _, _ := newTestMachine()
	control(m, CommandPrepareDownload)
	control(m, CommandDownload)

	// A second download while downloading is legal.
	if st := control(m, CommandDownload); st != ble.ErrSuccess {
		t.Errorf("repeat download: %v", st)
	}
}

func TestAbort(t *testing.T) {
	m, agent, _, _ := newTestMachine()
	control(m, CommandPrepareDownload)
	control(m, CommandDownload)

	if st := control(m, CommandAbort); st != ble.ErrSuccess {
		t.Fatalf("abort: %v", st)
	}
	if m.State() != StateIdle {
		t.Errorf("state after abort: %v", m.State())
	}
	if agent.sess.aborts != 1 {
		t.Errorf("agent aborts: %d", agent.sess.aborts)
	}

	// The released session no longer accepts data.
	if st := m.HandleWrite(testHandles.Data, []byte{1}); st != ble.ErrGeneric {
		t.Errorf("data after abort: %v", st)
	}
	if st := control(m, CommandDownload); st != ble.ErrGeneric {
		t.Errorf("download after abort: %v", st)
	}
}

func TestAbortWhileIdle(t *testing.T) {
	m, agent, _, _ := newTestMachine()
	if st := control(m, CommandAbort); st != ble.ErrSuccess {
		t.Errorf("abort while idle: %v", st)
	}
	if agent.sess.aborts != 0 {
		t.Errorf("agent aborted with no session")
	}
}

func TestPrepareFailureReleasesSession(t *testing.T) {
	m, agent, _, _ := newTestMachine()
	agent.sess.prepareErr = errors.New("flash busy")

	if st := control(m, CommandPrepareDownload); st != ble.ErrGeneric {
		t.Fatalf("prepare: %v", st)
	}
	if m.State() != StateIdle {
		t.Errorf("state: %v", m.State())
	}
	if st := m.HandleWrite(testHandles.Data, []byte{1}); st != ble.ErrGeneric {
		t.Errorf("data after failed prepare: %v", st)
	}
}

func TestDownloadFailureKeepsState(t *testing.T) {
	m, agent, _, _ := newTestMachine()
	control(m, CommandPrepareDownload)
	agent.sess.downloadErr = errors.New("no space")

	if st := control(m, CommandDownload); st != ble.ErrGeneric {
		t.Fatalf("download: %v", st)
	}
	if m.State() != StatePreparing {
		t.Errorf("state: %v", m.State())
	}
}

func TestUnknownCommand(t *testing.T) {
	m, _, _, _ := newTestMachine()
	if st := control(m, Command(0x7F)); st != ble.ErrReqNotSupp {
		t.Errorf("unknown command: %v", st)
	}
	if st := m.HandleWrite(testHandles.ControlPoint, nil); st != ble.ErrInvalidPDU {
		t.Errorf("empty control write: %v", st)
	}
	if st := m.HandleWrite(99, []byte{1}); st != ble.ErrReqNotSupp {
		t.Errorf("unrouted handle: %v", st)
	}
}

func TestConfirmationReboots(t *testing.T) {
	m, agent, restarter, _ := newTestMachine()
	control(m, CommandPrepareDownload)
	control(m, CommandDownload)
	control(m, CommandVerify)
	agent.sess.state = AgentComplete

	m.HandleConfirmation()
	if restarter.restarts != 1 {
		t.Fatalf("restarts: %d", restarter.restarts)
	}
	if m.State() != StateComplete {
		t.Errorf("state: %v", m.State())
	}
	if agent.sess.stops != 0 {
		t.Errorf("agent stopped before reboot")
	}
}

func TestConfirmationWithoutCompletionStops(t *testing.T) {
	m, agent, restarter, _ := newTestMachine()
	control(m, CommandPrepareDownload)
	agent.sess.state = AgentDownloading

	m.HandleConfirmation()
	if restarter.restarts != 0 {
		t.Errorf("restarted without completion")
	}
	if agent.sess.stops != 1 {
		t.Errorf("stops: %d", agent.sess.stops)
	}
	if m.State() != StateIdle {
		t.Errorf("state: %v", m.State())
	}

	// With no session, a confirmation is a no-op.
	m.HandleConfirmation()
	if agent.sess.stops != 1 {
		t.Errorf("stop repeated: %d", agent.sess.stops)
	}
}

func TestCCCDWriteRecordsBitmapOnly(t *testing.T) {
	m, agent, _, _ := newTestMachine()

	if st := m.HandleWrite(testHandles.ControlPointCCCD, []byte{0x01, 0x00}); st != ble.ErrSuccess {
		t.Fatalf("cccd write: %v", st)
	}
	if m.ConfigDescriptor() != 0x0001 {
		t.Errorf("config descriptor: 0x%04X", m.ConfigDescriptor())
	}
	if m.State() != StateIdle || agent.starts != 0 {
		t.Errorf("cccd write had side effects: state=%v starts=%d", m.State(), agent.starts)
	}
}
