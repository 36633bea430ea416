// Package deadline arms a wall-clock budget for a status collection run.
// The budget cannot interrupt a blocking libgit2 call, so the collector
// polls Fired at step boundaries; a hard-exit safety net covers the case
// where a native call never returns within the grace period.
package deadline

import (
	"io"
	"os"
	"sync/atomic"
	"time"
)

// hardExitLine is written to stdout by the safety net. The leading newline
// guards against a line the collector was mid-write on; the remainder is a
// complete terminal classification with repo_state kept as the stream's
// final line.
const hardExitLine = "\nrepo_error='Timed out'\nrepo_state=Error\n"

// HardExitCode is the process exit code used by the safety net.
const HardExitCode = 2

// Controller owns the deadline flag. The flag is written only by the timer
// callback goroutine and read from the collector's thread, so it is the one
// piece of shared state in the program.
type Controller struct {
	fired   atomic.Bool
	settled atomic.Bool
	soft    *time.Timer
	hard    *time.Timer
	hardAt  time.Time

	// Injection points for the hard-exit safety net, overridden in tests.
	out  io.Writer
	exit func(code int)
}

// NewController creates a disarmed controller wired to the real process
// stdout and exit.
func NewController() *Controller {
	return &Controller{out: os.Stdout, exit: os.Exit}
}

// Arm starts the countdown. A budget of zero or less disables deadline
// enforcement entirely: Fired never reports true and no safety net is
// installed. A positive grace installs the hard-exit safety net at
// budget+grace for the case where collection never reaches another
// checkpoint.
func (c *Controller) Arm(budget, grace time.Duration) {
	if budget <= 0 {
		return
	}

	c.soft = time.AfterFunc(budget, func() {
		c.fired.Store(true)
	})

	if grace > 0 {
		c.hardAt = time.Now().Add(budget + grace)
		c.hard = time.AfterFunc(budget+grace, c.hardExit)
	}
}

// Settle marks the output stream as terminally classified. The safety net
// stands down so it can never append after a repo_state line has been
// written.
func (c *Controller) Settle() {
	c.settled.Store(true)

	if c.hard != nil {
		c.hard.Stop()
	}
}

// Resume re-installs the safety net for a further collection run in the
// same process, keeping the original absolute deadline.
func (c *Controller) Resume() {
	if c.hard == nil {
		return
	}

	c.settled.Store(false)
	c.hard.Reset(time.Until(c.hardAt))
}

// Fired reports whether the budget has elapsed.
func (c *Controller) Fired() bool {
	return c.fired.Load()
}

// Disarm cancels pending timers. Called once collection reaches a terminal
// state so the safety net cannot fire during process teardown.
func (c *Controller) Disarm() {
	if c.soft != nil {
		c.soft.Stop()
	}

	if c.hard != nil {
		c.hard.Stop()
	}
}

// hardExit emits a terminal classification and kills the process. The
// whole payload goes out in one write so the stream stays evaluable. A
// settled stream already ends in repo_state and is left alone.
func (c *Controller) hardExit() {
	if c.settled.Load() {
		return
	}

	_, _ = io.WriteString(c.out, hardExitLine)
	c.exit(HardExitCode)
}
