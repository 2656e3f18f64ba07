package core

import (
	"slices"
	"sync"
)

// DeepLinkResolver turns a URI into a new tree against the current tree. The
// route package provides the production implementation; the engine depends
// only on this contract.
type DeepLinkResolver interface {
	Resolve(uri string, current NavNode) (NavNode, error)
}

const observeBuffer = 32

// Navigator is the externally consumed facade. It holds the committed tree
// in a single-writer reactive cell, serializes every mutation through the
// tree mutator and the transition coordinator, and broadcasts commits to
// subscribers in the exact order they were applied.
//
// The navigator provides no internal locking beyond protecting its own cell:
// concurrent intent producers must be serialized by the host application's
// dispatch loop, and at most one mutation is assumed in flight at a time. A
// subscriber that stops draining its channel back-pressures the writer; this
// is deliberate, commits are never reordered or coalesced. Canceling a
// subscription releases any delivery blocked on it.
type Navigator struct {
	mu       sync.RWMutex
	mut      *Mutator
	coord    *Coordinator
	resolver DeepLinkResolver
	subs     []*subscription
}

// subscription pairs a subscriber's delivery channel with its cancellation
// signal. The delivery channel is never closed: a close racing an in-flight
// send would panic the mutating goroutine, so termination is signaled through
// done instead and the channel is left to the collector.
type subscription struct {
	ch   chan NavNode
	done chan struct{}
}

// NewNavigator builds a navigator over the given committed root. The
// resolver may be nil, in which case ResolveDeepLink always reports false.
func NewNavigator(root NavNode, resolver DeepLinkResolver) *Navigator {
	return &Navigator{
		mut:      NewMutator(),
		coord:    NewCoordinator(root),
		resolver: resolver,
	}
}

// SetKeyFunc overrides key generation for nodes minted by this navigator.
// Tests use a deterministic sequence; the default is RandomKey.
func (n *Navigator) SetKeyFunc(fn func() Key) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mut.NewKey = fn
}

// Root returns the current committed tree.
func (n *Navigator) Root() NavNode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.coord.Tree()
}

// Observe subscribes to the committed tree: the current value is replayed
// first, then every subsequent commit streams in order. The returned cancel
// function releases the subscription and unblocks any delivery still waiting
// on the subscriber; the channel is not closed and simply stops receiving.
func (n *Navigator) Observe() (<-chan NavNode, func()) {
	sub := &subscription{
		ch:   make(chan NavNode, observeBuffer),
		done: make(chan struct{}),
	}
	n.mu.Lock()
	n.subs = append(n.subs, sub)
	sub.ch <- n.coord.Tree()
	n.mu.Unlock()
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s == sub {
				n.subs = slices.Delete(n.subs, i, i+1)
				close(sub.done)
				return
			}
		}
	}
	return sub.ch, cancel
}

// broadcast delivers one commit to every subscriber, in order. Each send
// races the subscriber's cancellation so a canceled subscription can never
// wedge or panic the writer.
func broadcast(subs []*subscription, tree NavNode) {
	for _, sub := range subs {
		select {
		case sub.ch <- tree:
		case <-sub.done:
		}
	}
}

// apply runs one mutation against the committed tree and commits the result.
// A failed mutation leaves the cell untouched; a mutation returning the same
// root commits nothing.
func (n *Navigator) apply(op func(NavNode) (NavNode, error)) error {
	n.mu.Lock()
	if phase := n.coord.Phase(); phase != PhaseIdle {
		n.mu.Unlock()
		return ErrBadPhase
	}
	cur := n.coord.Tree()
	next, err := op(cur)
	if err != nil {
		n.mu.Unlock()
		return err
	}
	if next == cur {
		n.mu.Unlock()
		return nil
	}
	if err := n.coord.Replace(next); err != nil {
		n.mu.Unlock()
		return err
	}
	subs := slices.Clone(n.subs)
	n.mu.Unlock()
	broadcast(subs, next)
	return nil
}

// Push appends a screen for dest onto the active stack.
func (n *Navigator) Push(dest Destination) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.Push(t, dest) })
}

// Pop removes the top of the active stack. popped=false with a nil error is
// the exit-intent signal: nothing was left to pop and the tree is unchanged.
func (n *Navigator) Pop() (bool, error) {
	popped := false
	err := n.apply(func(t NavNode) (NavNode, error) {
		next, ok, err := n.mut.Pop(t)
		popped = ok
		return next, err
	})
	return popped, err
}

// PopUntil pops the active stack down to the most recent destination
// matching pred, reporting whether a match was found.
func (n *Navigator) PopUntil(pred func(Destination) bool) bool {
	matched := false
	_ = n.apply(func(t NavNode) (NavNode, error) {
		next, ok := n.mut.PopUntil(t, pred)
		matched = ok
		return next, nil
	})
	return matched
}

// Replace swaps the active stack's top for a screen showing dest.
func (n *Navigator) Replace(dest Destination) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.Replace(t, dest) })
}

// ReplaceAll replaces the active stack's entire history.
func (n *Navigator) ReplaceAll(dests []Destination) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.ReplaceAll(t, dests) })
}

// Insert places a screen for dest at index in the active stack.
func (n *Navigator) Insert(index int, dest Destination) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.Insert(t, index, dest) })
}

// RemoveAt removes the active stack child at index.
func (n *Navigator) RemoveAt(index int) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.RemoveAt(t, index) })
}

// RemoveByKey removes the active stack child with the given key.
func (n *Navigator) RemoveByKey(key Key) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.RemoveByKey(t, key) })
}

// Swap exchanges two active stack children.
func (n *Navigator) Swap(i, j int) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.Swap(t, i, j) })
}

// Move relocates an active stack child.
func (n *Navigator) Move(from, to int) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.Move(t, from, to) })
}

// SwitchTab activates a lane on the tab node with the given key.
func (n *Navigator) SwitchTab(tabKey Key, index int) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.SwitchTab(t, tabKey, index) })
}

// NavigateToPane pushes dest onto the stack backing the given pane role.
func (n *Navigator) NavigateToPane(role string, dest Destination) error {
	return n.apply(func(t NavNode) (NavNode, error) { return n.mut.NavigateToPane(t, role, dest) })
}

// SetLayoutMode applies the externally detected layout mode to every pane.
func (n *Navigator) SetLayoutMode(mode LayoutMode) error {
	return n.apply(func(t NavNode) (NavNode, error) { return SetLayoutMode(t, mode), nil })
}

// ResolveDeepLink resolves and applies a deep link in one call. Any failure
// reports false and leaves the committed tree completely unchanged.
func (n *Navigator) ResolveDeepLink(uri string) bool {
	if n.resolver == nil {
		return false
	}
	err := n.apply(func(t NavNode) (NavNode, error) { return n.resolver.Resolve(uri, t) })
	return err == nil
}

// BeginBackGesture proposes a speculative pop. started=false means nothing
// was left to pop and no gesture began.
func (n *Navigator) BeginBackGesture() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	speculative, popped, err := n.mut.Pop(n.coord.Tree())
	if err != nil {
		return false, err
	}
	if !popped {
		return false, nil
	}
	if err := n.coord.Begin(speculative); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateBackGesture records normalized gesture progress.
func (n *Navigator) UpdateBackGesture(progress float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.coord.Update(progress)
}

// CancelBackGesture discards the speculative tree; subscribers never observe
// any mutation.
func (n *Navigator) CancelBackGesture() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.coord.Cancel()
}

// CommitBackGesture promotes the speculative tree to committed and notifies
// subscribers. The renderer should call SettleBackGesture once its settle
// animation finishes.
func (n *Navigator) CommitBackGesture() error {
	n.mu.Lock()
	if err := n.coord.Commit(); err != nil {
		n.mu.Unlock()
		return err
	}
	next := n.coord.Tree()
	subs := slices.Clone(n.subs)
	n.mu.Unlock()
	broadcast(subs, next)
	return nil
}

// SettleBackGesture returns the coordinator to idle after a commit.
func (n *Navigator) SettleBackGesture() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.coord.Settle()
}

// Phase exposes the coordinator phase for renderers.
func (n *Navigator) Phase() Phase {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.coord.Phase()
}

// Frame flattens the current superposition for the renderer.
func (n *Navigator) Frame() Frame {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.coord.Frame()
}

// Snapshot serializes the committed tree per the snapshot contract.
func (n *Navigator) Snapshot() ([]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return EncodeSnapshot(n.coord.Tree())
}

// Restore replaces the committed tree with a decoded, re-validated snapshot.
func (n *Navigator) Restore(data []byte) error {
	root, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	return n.apply(func(NavNode) (NavNode, error) { return root, nil })
}
