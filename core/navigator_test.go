package core

import (
	"errors"
	"testing"
	"time"
)

type stubResolver struct {
	tree NavNode
	err  error
}

func (s *stubResolver) Resolve(uri string, current NavNode) (NavNode, error) {
	if s.err != nil {
		return current, s.err
	}
	return s.tree, nil
}

func newTestNavigator(root NavNode, resolver DeepLinkResolver) *Navigator {
	nav := NewNavigator(root, resolver)
	nav.SetKeyFunc(seqKeys())
	return nav
}

func TestObserveReplaysThenStreamsInOrder(t *testing.T) {
	root := NewStack("root", screen("home", "home"))
	nav := newTestNavigator(root, nil)

	ch, cancel := nav.Observe()
	defer cancel()

	if got := <-ch; got != NavNode(root) {
		t.Fatalf("first value must replay the current tree")
	}

	for i := 0; i < 3; i++ {
		if err := nav.Push(dest("detail")); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	for want := 2; want <= 4; want++ {
		got := <-ch
		if got.(*StackNode).Len() != want {
			t.Fatalf("commit out of order: len = %d, want %d", got.(*StackNode).Len(), want)
		}
	}
}

func TestObserveCancelStopsDelivery(t *testing.T) {
	nav := newTestNavigator(NewStack("root", screen("home", "home")), nil)
	ch, cancel := nav.Observe()
	<-ch
	cancel()

	// Commits after cancel must not panic, block, or deliver.
	if err := nav.Push(dest("detail")); err != nil {
		t.Fatalf("push: %v", err)
	}
	select {
	case got := <-ch:
		t.Fatalf("canceled subscription received %v", got)
	default:
	}
}

func TestCancelUnblocksBackloggedBroadcast(t *testing.T) {
	nav := newTestNavigator(NewStack("root", screen("home", "home")), nil)
	ch, cancel := nav.Observe()
	<-ch

	// Fill the subscriber's buffer without draining it.
	for i := 0; i < observeBuffer; i++ {
		if err := nav.Push(dest("detail")); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}

	// The next commit blocks on the full channel until the subscription is
	// canceled out from under it.
	pushed := make(chan error, 1)
	go func() {
		pushed <- nav.Push(dest("overflow"))
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-pushed:
		if err != nil {
			t.Fatalf("push: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancel did not release the blocked commit")
	}

	// The writer keeps working after the canceled subscriber is gone.
	if err := nav.Push(dest("after")); err != nil {
		t.Fatalf("push after cancel: %v", err)
	}
}

func TestFailedMutationCommitsNothing(t *testing.T) {
	root := NewStack("root", screen("a", "a"))
	nav := newTestNavigator(root, nil)
	ch, cancel := nav.Observe()
	defer cancel()
	<-ch

	err := nav.Insert(5, dest("x"))
	var idxErr *IndexError
	if !errors.As(err, &idxErr) {
		t.Fatalf("err = %v, want IndexError", err)
	}
	if nav.Root() != NavNode(root) {
		t.Fatalf("failed mutation must leave the cell untouched")
	}
	select {
	case got := <-ch:
		t.Fatalf("unexpected commit %v", got)
	default:
	}
}

func TestFailedDeepLinkLeavesTreeUnchanged(t *testing.T) {
	root := NewStack("root", screen("home", "home"))
	nav := newTestNavigator(root, &stubResolver{err: ErrMalformedDeepLink})

	if nav.ResolveDeepLink("app://nope") {
		t.Fatalf("resolve must report failure")
	}
	if nav.Root() != NavNode(root) {
		t.Fatalf("failed deep link must leave the tree unchanged")
	}
}

func TestResolveDeepLinkCommitsResolvedTree(t *testing.T) {
	root := NewStack("root", screen("home", "home"))
	target := NewStack("root", screen("home", "home"), screen("detail", "detail"))
	nav := newTestNavigator(root, &stubResolver{tree: target})

	if !nav.ResolveDeepLink("app://detail") {
		t.Fatalf("resolve failed")
	}
	if nav.Root() != NavNode(target) {
		t.Fatalf("resolved tree not committed")
	}
}

func TestResolveDeepLinkWithoutResolver(t *testing.T) {
	nav := newTestNavigator(NewStack("root", screen("home", "home")), nil)
	if nav.ResolveDeepLink("app://detail") {
		t.Fatalf("resolverless navigator must report false")
	}
}

func TestPopExitSignalThroughNavigator(t *testing.T) {
	root := NewStack("root", screen("home", "home"))
	nav := newTestNavigator(root, nil)

	popped, err := nav.Pop()
	if err != nil || popped {
		t.Fatalf("pop = %v, %v; want exit signal", popped, err)
	}
	if nav.Root() != NavNode(root) {
		t.Fatalf("exit signal must not mutate")
	}
}

func TestBackGestureCancelKeepsCommittedTree(t *testing.T) {
	root := NewStack("root", screen("home", "home"), screen("detail", "detail"))
	nav := newTestNavigator(root, nil)
	ch, cancel := nav.Observe()
	defer cancel()
	<-ch

	started, err := nav.BeginBackGesture()
	if err != nil || !started {
		t.Fatalf("begin = %v, %v", started, err)
	}
	if err := nav.UpdateBackGesture(0.8); err != nil {
		t.Fatalf("update: %v", err)
	}
	// Subscribers still see the committed tree, untouched.
	if nav.Root() != NavNode(root) {
		t.Fatalf("proposal leaked into the committed cell")
	}
	if err := nav.CancelBackGesture(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if nav.Root() != NavNode(root) || nav.Phase() != PhaseIdle {
		t.Fatalf("cancel must be a perfect no-op")
	}
	select {
	case got := <-ch:
		t.Fatalf("cancel must not notify subscribers, got %v", got)
	default:
	}
}

func TestBackGestureCommitNotifiesSubscribers(t *testing.T) {
	root := NewStack("root", screen("home", "home"), screen("detail", "detail"))
	nav := newTestNavigator(root, nil)
	ch, cancel := nav.Observe()
	defer cancel()
	<-ch

	if _, err := nav.BeginBackGesture(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := nav.CommitBackGesture(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	got := <-ch
	if got.(*StackNode).Len() != 1 {
		t.Fatalf("committed tree len = %d, want 1", got.(*StackNode).Len())
	}
	if nav.Phase() != PhaseCommitting {
		t.Fatalf("phase = %s, want committing until settle", nav.Phase())
	}
	if err := nav.SettleBackGesture(); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if nav.Phase() != PhaseIdle {
		t.Fatalf("phase = %s after settle", nav.Phase())
	}
}

func TestBackGestureRefusedAtRootScreen(t *testing.T) {
	nav := newTestNavigator(NewStack("root", screen("home", "home")), nil)
	started, err := nav.BeginBackGesture()
	if err != nil || started {
		t.Fatalf("gesture = %v, %v; nothing to pop", started, err)
	}
	if nav.Phase() != PhaseIdle {
		t.Fatalf("refused gesture must stay idle")
	}
}

func TestMutationsRejectedDuringGesture(t *testing.T) {
	root := NewStack("root", screen("home", "home"), screen("detail", "detail"))
	nav := newTestNavigator(root, nil)

	if _, err := nav.BeginBackGesture(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := nav.Push(dest("x")); !errors.Is(err, ErrBadPhase) {
		t.Fatalf("push during gesture err = %v", err)
	}
	if nav.Root() != NavNode(root) {
		t.Fatalf("rejected mutation must not touch the tree")
	}
	if err := nav.CancelBackGesture(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := nav.Push(dest("x")); err != nil {
		t.Fatalf("push after cancel: %v", err)
	}
}

func TestPopUntilThroughNavigator(t *testing.T) {
	root := NewStack("root", screen("a", "a"), screen("b", "b"), screen("c", "c"))
	nav := newTestNavigator(root, nil)

	if !nav.PopUntil(func(d Destination) bool { return d.Tag() == "a" }) {
		t.Fatalf("popUntil missed")
	}
	if nav.Root().(*StackNode).Len() != 1 {
		t.Fatalf("len = %d, want 1", nav.Root().(*StackNode).Len())
	}
	if nav.PopUntil(func(d Destination) bool { return d.Tag() == "zzz" }) {
		t.Fatalf("popUntil must miss cleanly")
	}
}

func TestNavigatorFrameIdle(t *testing.T) {
	nav := newTestNavigator(NewStack("root", screen("home", "home")), nil)
	frame := nav.Frame()
	if len(frame.Incoming) != 1 || len(frame.Outgoing) != 0 {
		t.Fatalf("idle frame = %+v", frame)
	}
}
