// Package bas runs the battery service's periodic level notification.
package bas

import (
	"time"

	"github.com/mgutz/logxi/v1"
	"golang.org/x/net/context"

	ble "github.com/galudino/mtb-bluetooth-le-battery-server"
	"github.com/galudino/mtb-bluetooth-le-battery-server/att"
)

var logger = log.New("bas")

const (
	// DefaultInterval is the period between battery level updates.
	DefaultInterval = 10 * time.Second

	// DefaultStep is the amount the simulated level drops per update.
	DefaultStep = 2
)

// A Notifier sends a handle-value notification over the active link.
type Notifier interface {
	Notify(connID uint16, handle uint16, value []byte) (int, error)
}

// Task decrements the battery level attribute on a timer and notifies the
// connected central when it has subscribed. The task owns the level value;
// everything it shares is read through the session snapshot or written
// through the locked store.
type Task struct {
	session     *ble.Session
	store       *att.Store
	notifier    Notifier
	valueHandle uint16

	// Interval and Step default to DefaultInterval and DefaultStep when
	// zero at Run time.
	Interval time.Duration
	Step     uint8
}

// NewTask returns a battery task over the given collaborators.
// valueHandle is the battery level value attribute.
func NewTask(session *ble.Session, store *att.Store, n Notifier, valueHandle uint16) *Task {
	return &Task{
		session:     session,
		store:       store,
		notifier:    n,
		valueHandle: valueHandle,
		Interval:    DefaultInterval,
		Step:        DefaultStep,
	}
}

// Run loops until ctx is canceled. A tick only moves the level while a
// central is connected and has the notify bit set; otherwise the level
// holds. Each update drops the level by Step, reaching 0 before wrapping
// back to full, and is notified to the subscriber.
func (t *Task) Run(ctx context.Context) error {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	step := t.Step
	if step == 0 {
		step = DefaultStep
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.tick(step)
		}
	}
}

func (t *Task) tick(step uint8) {
	connID, ccc := t.session.Snapshot()
	if connID == 0 || ccc&ble.CCCNotify == 0 {
		return
	}

	level := t.nextLevel(step)
	if st := t.store.SetValue(t.valueHandle, []byte{level}); st != ble.ErrSuccess {
		logger.Error("level update", "err", st)
		return
	}
	if _, err := t.notifier.Notify(connID, t.valueHandle, []byte{level}); err != nil {
		logger.Error("notify", "err", err)
		return
	}
	logger.Debug("notified", "level", level)
}

// nextLevel reads the current level from the store and steps it down.
// The level bottoms out at 0, which the subscriber does see, and wraps
// back to full on the following update.
func (t *Task) nextLevel(step uint8) uint8 {
	a := t.store.Find(t.valueHandle)
	if a == nil {
		return 100
	}
	v := a.Value()
	if len(v) < 1 {
		return 100
	}
	if v[0] < step {
		return 100
	}
	return v[0] - step
}
