package core

import (
	"errors"
	"testing"
)

func gestureFixture(t *testing.T) (*Coordinator, NavNode, NavNode) {
	t.Helper()
	m := seqMutator()
	committed := NewStack("root", screen("home", "home"), screen("detail", "detail"))
	speculative, ok, err := m.Pop(committed)
	if err != nil || !ok {
		t.Fatalf("pop: ok=%v err=%v", ok, err)
	}
	return NewCoordinator(committed), committed, speculative
}

func TestCoordinatorLifecycle(t *testing.T) {
	c, committed, speculative := gestureFixture(t)

	if c.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", c.Phase())
	}
	if err := c.Begin(speculative); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if c.Phase() != PhaseProposed {
		t.Fatalf("phase = %s, want proposed", c.Phase())
	}
	if c.Tree() != committed {
		t.Fatalf("committed tree must stay observable during proposal")
	}
	if err := c.Update(0.6); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.Progress() != 0.6 {
		t.Fatalf("progress = %v", c.Progress())
	}
	if err := c.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if c.Phase() != PhaseCommitting || c.Tree() != speculative {
		t.Fatalf("commit must swap trees atomically")
	}
	if err := c.Settle(); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if c.Phase() != PhaseIdle || c.Speculative() != nil {
		t.Fatalf("settle must clear the candidate")
	}
}

func TestCancelIsInvisible(t *testing.T) {
	c, committed, speculative := gestureFixture(t)

	if err := c.Begin(speculative); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := c.Update(0.9); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := c.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// Not just equal: the exact same tree, untouched.
	if c.Tree() != committed {
		t.Fatalf("cancel must leave the committed tree byte-for-byte identical")
	}
	if c.Phase() != PhaseIdle || c.Progress() != 0 {
		t.Fatalf("cancel must reset the machine")
	}
}

func TestSignalsRejectedOutOfPhase(t *testing.T) {
	c, _, speculative := gestureFixture(t)

	for _, err := range []error{c.Update(0.5), c.Cancel(), c.Commit()} {
		if !errors.Is(err, ErrBadPhase) {
			t.Fatalf("idle signal err = %v, want ErrBadPhase", err)
		}
	}
	if err := c.Settle(); err != nil {
		t.Fatalf("idle settle must be a no-op, got %v", err)
	}

	if err := c.Begin(speculative); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !errors.Is(c.Begin(speculative), ErrBadPhase) {
		t.Fatalf("double begin must be rejected")
	}
	if !errors.Is(c.Replace(speculative), ErrBadPhase) {
		t.Fatalf("direct mutation during a gesture must be rejected")
	}
	if !errors.Is(c.Settle(), ErrBadPhase) {
		t.Fatalf("settle while proposed must be rejected")
	}
}

func TestUpdateClampsProgress(t *testing.T) {
	c, _, speculative := gestureFixture(t)
	if err := c.Begin(speculative); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := c.Update(1.7); err != nil || c.Progress() != 1 {
		t.Fatalf("progress = %v, err = %v", c.Progress(), err)
	}
	if err := c.Update(-0.3); err != nil || c.Progress() != 0 {
		t.Fatalf("progress = %v, err = %v", c.Progress(), err)
	}
}

func TestFrameSuperposition(t *testing.T) {
	c, _, speculative := gestureFixture(t)

	idle := c.Frame()
	if len(idle.Outgoing) != 0 || len(idle.Incoming) != 1 {
		t.Fatalf("idle frame = %+v", idle)
	}

	if err := c.Begin(speculative); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := c.Update(0.4); err != nil {
		t.Fatalf("update: %v", err)
	}
	frame := c.Frame()
	if frame.Progress != 0.4 {
		t.Fatalf("progress = %v", frame.Progress)
	}
	if frame.Outgoing[0].Destination.Tag() != "detail" {
		t.Fatalf("outgoing = %s, want the committed top", frame.Outgoing[0].Destination)
	}
	if frame.Incoming[0].Destination.Tag() != "home" {
		t.Fatalf("incoming = %s, want the revealed screen", frame.Incoming[0].Destination)
	}
	if frame.Incoming[0].ZOrder <= maxZ(frame.Outgoing) {
		t.Fatalf("incoming Z %d must sit above outgoing max %d",
			frame.Incoming[0].ZOrder, maxZ(frame.Outgoing))
	}

	if err := c.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	settling := c.Frame()
	if settling.Outgoing[0].Destination.Tag() != "detail" {
		t.Fatalf("the departing screen animates out: %+v", settling)
	}
	if settling.Incoming[0].Destination.Tag() != "home" {
		t.Fatalf("after commit the new committed tree settles in: %+v", settling)
	}
}
