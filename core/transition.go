package core

import (
	"errors"
	"fmt"
)

// ErrBadPhase reports a gesture signal delivered in a phase that does not
// accept it.
var ErrBadPhase = errors.New("transition: signal not valid in current phase")

// Phase enumerates the transition coordinator's states.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProposed
	PhaseCommitting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseProposed:
		return "proposed"
	case PhaseCommitting:
		return "committing"
	}
	return "unknown"
}

// Frame is the renderable superposition during a gesture: both trees
// flattened plus the blend progress. Incoming surfaces carry Z strictly
// above every outgoing surface.
type Frame struct {
	Outgoing []Surface
	Incoming []Surface
	Progress float64
}

// Coordinator is the state machine backing cancelable, gesture-driven back
// navigation. It is the only component allowed to hold two trees at once:
// the committed tree stays the externally observable state while a
// speculative candidate rides alongside it. Cancellation discards the
// candidate without any observable mutation; committing swaps the trees
// atomically and settles through a short committing phase kept purely for
// rendering continuity.
//
// The coordinator holds no locks and spans no blocking waits; each signal is
// a discrete synchronous transition serialized by the owning navigator.
type Coordinator struct {
	phase       Phase
	committed   NavNode
	speculative NavNode
	progress    float64
}

// NewCoordinator starts idle on the given committed tree.
func NewCoordinator(tree NavNode) *Coordinator {
	return &Coordinator{phase: PhaseIdle, committed: tree}
}

func (c *Coordinator) Phase() Phase { return c.phase }
func (c *Coordinator) Progress() float64 { return c.progress }

// Tree returns the committed tree, the only state subscribers may observe.
func (c *Coordinator) Tree() NavNode { return c.committed }

// Speculative returns the candidate tree, or nil outside a gesture.
func (c *Coordinator) Speculative() NavNode {
	if c.phase == PhaseIdle {
		return nil
	}
	return c.speculative
}

// Replace installs a new committed tree. Only legal while idle: direct
// mutations during a gesture would race the speculative candidate.
func (c *Coordinator) Replace(tree NavNode) error {
	if c.phase != PhaseIdle {
		return fmt.Errorf("%w: replace during %s", ErrBadPhase, c.phase)
	}
	c.committed = tree
	return nil
}

// Begin moves Idle to Proposed with the given speculative candidate,
// typically the committed tree after a pop.
func (c *Coordinator) Begin(speculative NavNode) error {
	if c.phase != PhaseIdle {
		return fmt.Errorf("%w: begin during %s", ErrBadPhase, c.phase)
	}
	c.phase = PhaseProposed
	c.speculative = speculative
	c.progress = 0
	return nil
}

// Update records gesture progress in [0,1] while proposed.
func (c *Coordinator) Update(progress float64) error {
	if c.phase != PhaseProposed {
		return fmt.Errorf("%w: update during %s", ErrBadPhase, c.phase)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	c.progress = progress
	return nil
}

// Cancel discards the speculative tree. The committed tree is untouched by
// construction; no subscriber ever saw the candidate.
func (c *Coordinator) Cancel() error {
	if c.phase != PhaseProposed {
		return fmt.Errorf("%w: cancel during %s", ErrBadPhase, c.phase)
	}
	c.phase = PhaseIdle
	c.speculative = nil
	c.progress = 0
	return nil
}

// Commit promotes the speculative tree to committed and enters the
// committing phase. The tree swap itself is instantaneous and atomic; the
// phase exists so the renderer can animate progress to settled.
func (c *Coordinator) Commit() error {
	if c.phase != PhaseProposed {
		return fmt.Errorf("%w: commit during %s", ErrBadPhase, c.phase)
	}
	c.phase = PhaseCommitting
	c.committed, c.speculative = c.speculative, c.committed
	c.progress = 1
	return nil
}

// Settle ends the committing phase once the renderer has finished. Settling
// while already idle is a no-op so renderers may call it defensively.
func (c *Coordinator) Settle() error {
	switch c.phase {
	case PhaseIdle:
		return nil
	case PhaseCommitting:
		c.phase = PhaseIdle
		c.speculative = nil
		c.progress = 0
		return nil
	}
	return fmt.Errorf("%w: settle during %s", ErrBadPhase, c.phase)
}

// Frame flattens the current superposition. While idle only the committed
// tree is emitted; while proposed the committed tree is outgoing and the
// speculative tree incoming; while committing the roles flip because the
// former candidate is now the committed state being settled into.
func (c *Coordinator) Frame() Frame {
	switch c.phase {
	case PhaseProposed:
		out := Flatten(c.committed)
		in := raiseAbove(Flatten(c.speculative), maxZ(out))
		return Frame{Outgoing: out, Incoming: in, Progress: c.progress}
	case PhaseCommitting:
		out := Flatten(c.speculative)
		in := raiseAbove(Flatten(c.committed), maxZ(out))
		return Frame{Outgoing: out, Incoming: in, Progress: c.progress}
	}
	return Frame{Incoming: Flatten(c.committed), Progress: 0}
}

func raiseAbove(surfaces []Surface, base int) []Surface {
	for i := range surfaces {
		surfaces[i].ZOrder += base + 1
	}
	return surfaces
}
