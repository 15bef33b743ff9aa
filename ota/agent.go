package ota

// AgentState is the externally reported state of the OTA agent.
type AgentState int

const (
	AgentNotInitialized AgentState = iota
	AgentDownloading
	AgentVerifying
	AgentComplete
	AgentFailed
)

func (s AgentState) String() string {
	switch s {
	case AgentNotInitialized:
		return "not initialized"
	case AgentDownloading:
		return "downloading"
	case AgentVerifying:
		return "verifying"
	case AgentComplete:
		return "complete"
	case AgentFailed:
		return "failed"
	}
	return "unknown"
}

// Params configures an agent session at start.
type Params struct {
	// RebootAfterOTA asks the agent to expect a device restart once the
	// upgrade completes.
	RebootAfterOTA bool

	// ValidateAfterReboot enables post-reboot image validation, which
	// supports reverting a bad upgrade.
	ValidateAfterReboot bool
}

// An AgentSession is the opaque per-upgrade context owned by the external
// OTA collaborator. It exists from Agent.Start until Stop or Abort. All
// download, verify, and flash semantics live behind it; this package only
// sequences commands.
type AgentSession interface {
	// Prepare hands the connection id and the control-point subscription
	// bitmap to the agent ahead of the download.
	Prepare(connID uint16, configDescriptor uint16) error

	// Download tells the agent the transfer is starting.
	Download(payload []byte, connID uint16, configDescriptor uint16) error

	// Verify asks the agent to check the received image.
	Verify(payload []byte, connID uint16) error

	// Write forwards one raw data-value payload into the agent's intake.
	Write(payload []byte) error

	// Abort cancels the upgrade and releases agent resources.
	Abort() error

	// State reports the agent's current state.
	State() AgentState

	// Stop shuts the agent down without a restart.
	Stop()
}

// An Agent creates upgrade sessions. Implemented by the transport-specific
// OTA collaborator; out of scope here.
type Agent interface {
	Start(p Params) (AgentSession, error)
}

// A Restarter restarts the device after a completed upgrade.
type Restarter interface {
	Restart()
}
