// Package collector drives repository status collection as an explicit
// state machine. Substeps run in a fixed order under a single goroutine,
// each substep's failure degrades to a per-field error, and the deadline
// is polled cooperatively between substeps because in-flight libgit2 calls
// cannot be interrupted.
package collector

import (
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/gitvars/pkg/deadline"
	"github.com/Sumatoshi-tech/gitvars/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitvars/pkg/shellvars"
)

// RepoState is the terminal classification of a collection run. It is
// always the last variable emitted so it can reflect the outcome of the
// whole run, including a timeout.
type RepoState string

// Terminal classifications.
const (
	StateNotFound RepoState = "NotFound"
	StateClean    RepoState = "Clean"
	StateDirty    RepoState = "Dirty"
	StateError    RepoState = "Error"
)

// TimedOutMessage is the repo_error value for a deadline expiry.
const TimedOutMessage = "Timed out"

// phase tracks the collector through its state machine.
type phase int

const (
	phaseInit phase = iota
	phaseOpening
	phaseDiscovered
	phaseAnalyzing
	phaseFinalizing
	phaseTerminal
)

// Collector orchestrates one collection run over an opened repository.
type Collector struct {
	out  *shellvars.Writer
	repo *gitlib.Repository
	ctl  *deadline.Controller
	log  *slog.Logger

	phase phase
	empty bool
	bare  bool

	head     *Head
	counts   *gitlib.StatusCounts
	stash    *int
	runError string
	terminal RepoState
}

// New creates a collector writing to out. The repository must already be
// open; the collector borrows it for the duration of Run and never frees it.
func New(out *shellvars.Writer, repo *gitlib.Repository, ctl *deadline.Controller, logger *slog.Logger) *Collector {
	return &Collector{
		out:   out,
		repo:  repo,
		ctl:   ctl,
		log:   logger,
		phase: phaseInit,
	}
}

// Summarize reports on the outcome of opening a repository. A successful
// open runs full collection; a definitive not-found emits the single
// NotFound classification; any other open failure is fatal and classified
// as Error. All recognized classifications are successful runs.
func Summarize(out *shellvars.Writer, repo *gitlib.Repository, openErr error, ctl *deadline.Controller, logger *slog.Logger) RepoState {
	if openErr != nil {
		ctl.Settle()

		if gitlib.IsNotFound(openErr) {
			out.WriteVar("repo_state", StateNotFound)

			return StateNotFound
		}

		out.WriteVar("repo_error", openErr.Error())
		out.WriteVar("repo_state", StateError)

		return StateError
	}

	return New(out, repo, ctl, logger).Run()
}

// Run drives the state machine to a terminal classification. Fields are
// flushed as soon as their substep produces them, so output interrupted at
// any point still evaluates cleanly.
func (c *Collector) Run() RepoState {
	for c.phase != phaseTerminal {
		switch c.phase {
		case phaseInit:
			c.phase = phaseOpening
		case phaseOpening:
			c.open()
		case phaseDiscovered:
			c.phase = phaseAnalyzing
		case phaseAnalyzing:
			c.analyze()
		case phaseFinalizing:
			c.finalize()
		case phaseTerminal:
		}
	}

	return c.terminal
}

// open discovers the repository shape and emits the workdir/empty/bare
// fields. Failing to read even that much is one of the two fatal cases.
func (c *Collector) open() {
	empty, err := c.repo.IsEmpty()
	if err != nil {
		c.runError = err.Error()
		c.phase = phaseFinalizing

		return
	}

	c.empty = empty
	c.bare = c.repo.IsBare()

	c.out.WriteVar("repo_workdir", c.repo.Workdir())
	c.out.WriteVar("repo_empty", c.empty)
	c.out.WriteVar("repo_bare", c.bare)

	c.phase = phaseDiscovered
}

// analyze runs the ordered substeps, polling the deadline around each one.
// An unborn HEAD skips both HEAD-dependent substeps; the working tree is
// still scanned because untracked and staged paths exist before the first
// commit.
func (c *Collector) analyze() {
	substeps := []struct {
		name string
		skip bool
		run  func()
	}{
		{name: "resolve-head", skip: c.empty, run: c.resolveHead},
		{name: "upstream-difference", skip: c.empty, run: c.compareUpstream},
		{name: "scan-worktree", skip: false, run: c.scanWorktree},
	}

	for _, substep := range substeps {
		if substep.skip {
			continue
		}

		if !c.checkpoint(substep.name) {
			break
		}

		c.timed(substep.name, substep.run)
	}

	c.phase = phaseFinalizing
}

// checkpoint polls the deadline flag before a substep. Once the budget has
// elapsed the remaining substeps are abandoned; everything already
// collected stays in the stream.
func (c *Collector) checkpoint(next string) bool {
	if !c.ctl.Fired() {
		return true
	}

	c.log.Debug("deadline elapsed, abandoning remaining substeps", "next", next)
	c.runError = TimedOutMessage

	return false
}

// timed runs a substep and logs its duration for --verbose diagnostics.
func (c *Collector) timed(name string, run func()) {
	start := time.Now()
	run()
	c.log.Debug("substep complete", "substep", name, "duration", time.Since(start))
}

// finalize decides the terminal classification and emits it as the last
// field. The deadline is re-checked so a budget that elapsed during the
// final substep is still reported as a timeout, then the safety net stands
// down so it cannot append a second repo_state after the one written here.
func (c *Collector) finalize() {
	if c.runError == "" && c.ctl.Fired() {
		c.runError = TimedOutMessage
	}

	c.ctl.Settle()

	switch {
	case c.runError != "":
		c.out.WriteVar("repo_error", c.runError)
		c.terminal = StateError
	case c.dirty():
		c.terminal = StateDirty
	default:
		c.terminal = StateClean
	}

	c.out.WriteVar("repo_state", c.terminal)
	c.phase = phaseTerminal
}

// dirty reports whether any working-tree bucket is nonzero. Stash count
// deliberately does not count: stashed work is set aside, not pending.
func (c *Collector) dirty() bool {
	if c.counts == nil {
		return false
	}

	return c.counts.Untracked > 0 ||
		c.counts.Unstaged > 0 ||
		c.counts.Staged > 0 ||
		c.counts.Conflicted > 0
}
