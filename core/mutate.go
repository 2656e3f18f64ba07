package core

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

var errNoDestinations = errors.New("replaceAll: no destinations")

// RandomKey mints a process-unique node key.
func RandomKey() Key { return Key(uuid.NewString()) }

// Mutator produces new trees from old trees plus an intent. Every operation
// is non-destructive: the input tree is never modified, untouched subtrees
// are reused by reference, and a failed operation returns the input tree
// unchanged so intents are safely retriable.
//
// NewKey supplies keys for nodes minted by push, insert, replace and friends.
// It defaults to RandomKey; supplying a deterministic generator makes every
// operation referentially transparent (same tree + same intent + same key
// sequence produces a bit-for-bit equal result).
type Mutator struct {
	NewKey func() Key
}

// NewMutator returns a mutator minting random keys.
func NewMutator() *Mutator { return &Mutator{NewKey: RandomKey} }

func (m *Mutator) nextKey() Key {
	if m.NewKey == nil {
		return RandomKey()
	}
	return m.NewKey()
}

// Push appends a new screen for dest onto the active leaf stack.
func (m *Mutator) Push(root NavNode, dest Destination) (NavNode, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	screen := NewScreen(m.nextKey(), dest)
	children := append(slices.Clone(stack.children), NavNode(screen))
	return rebuildPath(path, stack.withChildren(children)), nil
}

// PushScreen appends a pre-built screen (for example one carrying transition
// hints) onto the active leaf stack.
func (m *Mutator) PushScreen(root NavNode, screen *ScreenNode) (NavNode, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	children := append(slices.Clone(stack.children), NavNode(screen))
	return rebuildPath(path, stack.withChildren(children)), nil
}

// Pop removes the last child of the active leaf stack. An empty stack left
// behind cascades: the stack itself is removed from an enclosing stack. Tab
// lanes, pane roles and the root stack are not poppable past their last
// entry; a pop that would cross that line returns popped=false with a nil
// error, the exit-intent signal, and leaves the tree unchanged.
func (m *Mutator) Pop(root NavNode) (NavNode, bool, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, false, err
	}
	if stack.Len() > 1 {
		children := slices.Clone(stack.children)[:stack.Len()-1]
		return rebuildPath(path, stack.withChildren(children)), true, nil
	}
	for i := len(path) - 1; i > 0; i-- {
		parent, ok := path[i-1].(*StackNode)
		if !ok {
			// Tab lane or pane role at its root screen: inert, signal exit.
			return root, false, nil
		}
		if parent.Len() > 1 {
			children := slices.Clone(parent.children)[:parent.Len()-1]
			return rebuildPath(path[:i], parent.withChildren(children)), true, nil
		}
	}
	return root, false, nil
}

// PopUntil pops the active stack down to the most recent screen whose
// destination satisfies pred. When no screen matches, the tree is returned
// unchanged with matched=false; nothing is partially popped.
func (m *Mutator) PopUntil(root NavNode, pred func(Destination) bool) (NavNode, bool) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, false
	}
	for i := stack.Len() - 1; i >= 0; i-- {
		screen, ok := stack.children[i].(*ScreenNode)
		if !ok || !pred(screen.dest) {
			continue
		}
		if i == stack.Len()-1 {
			return root, true
		}
		children := slices.Clone(stack.children)[:i+1]
		return rebuildPath(path, stack.withChildren(children)), true
	}
	return root, false
}

// Replace swaps the active leaf's last child for a new screen without
// growing stack depth. On a transiently empty stack it behaves like Push.
func (m *Mutator) Replace(root NavNode, dest Destination) (NavNode, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	screen := NewScreen(m.nextKey(), dest)
	children := slices.Clone(stack.children)
	if len(children) == 0 {
		children = append(children, NavNode(screen))
	} else {
		children[len(children)-1] = screen
	}
	return rebuildPath(path, stack.withChildren(children)), nil
}

// ReplaceAll replaces the entire active stack's child list; the first
// destination becomes the new stack root.
func (m *Mutator) ReplaceAll(root NavNode, dests []Destination) (NavNode, error) {
	if len(dests) == 0 {
		return root, errNoDestinations
	}
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	children := make([]NavNode, len(dests))
	for i, d := range dests {
		children[i] = NewScreen(m.nextKey(), d)
	}
	return rebuildPath(path, stack.withChildren(children)), nil
}

// Insert places a new screen at index in the active stack's child list.
// Index len(children) appends.
func (m *Mutator) Insert(root NavNode, index int, dest Destination) (NavNode, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	if index < 0 || index > stack.Len() {
		return root, &IndexError{Op: "insert", Index: index, Len: stack.Len()}
	}
	screen := NewScreen(m.nextKey(), dest)
	children := slices.Insert(slices.Clone(stack.children), index, NavNode(screen))
	return rebuildPath(path, stack.withChildren(children)), nil
}

// RemoveAt removes the child at index from the active stack.
func (m *Mutator) RemoveAt(root NavNode, index int) (NavNode, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	if index < 0 || index >= stack.Len() {
		return root, &IndexError{Op: "removeAt", Index: index, Len: stack.Len()}
	}
	children := slices.Delete(slices.Clone(stack.children), index, index+1)
	return rebuildPath(path, stack.withChildren(children)), nil
}

// RemoveByKey removes the child with the given key from the active stack.
func (m *Mutator) RemoveByKey(root NavNode, key Key) (NavNode, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	idx := slices.IndexFunc(stack.children, func(n NavNode) bool { return n.Key() == key })
	if idx < 0 {
		return root, ErrUnknownKey
	}
	children := slices.Delete(slices.Clone(stack.children), idx, idx+1)
	return rebuildPath(path, stack.withChildren(children)), nil
}

// Swap exchanges the children at i and j in the active stack.
func (m *Mutator) Swap(root NavNode, i, j int) (NavNode, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	if i < 0 || i >= stack.Len() {
		return root, &IndexError{Op: "swap", Index: i, Len: stack.Len()}
	}
	if j < 0 || j >= stack.Len() {
		return root, &IndexError{Op: "swap", Index: j, Len: stack.Len()}
	}
	children := slices.Clone(stack.children)
	children[i], children[j] = children[j], children[i]
	return rebuildPath(path, stack.withChildren(children)), nil
}

// Move relocates the child at from to position to in the active stack.
func (m *Mutator) Move(root NavNode, from, to int) (NavNode, error) {
	path, stack, err := activeStackPath(root)
	if err != nil {
		return root, err
	}
	if from < 0 || from >= stack.Len() {
		return root, &IndexError{Op: "move", Index: from, Len: stack.Len()}
	}
	if to < 0 || to >= stack.Len() {
		return root, &IndexError{Op: "move", Index: to, Len: stack.Len()}
	}
	children := slices.Clone(stack.children)
	moved := children[from]
	children = slices.Delete(children, from, from+1)
	children = slices.Insert(children, to, moved)
	return rebuildPath(path, stack.withChildren(children)), nil
}

// SwitchTab updates the active index of the tab node with the given key.
// Lane contents are never touched.
func (m *Mutator) SwitchTab(root NavNode, tabKey Key, index int) (NavNode, error) {
	path := pathToKey(root, tabKey)
	if path == nil {
		return root, ErrUnknownTab
	}
	tab, ok := path.Leaf().(*TabNode)
	if !ok {
		return root, ErrUnknownTab
	}
	if index < 0 || index >= tab.Len() {
		return root, &IndexError{Op: "switchTab", Index: index, Len: tab.Len()}
	}
	if index == tab.active {
		return root, nil
	}
	return rebuildPath(path, tab.withActive(index)), nil
}

// NavigateToPane pushes a screen for dest onto the stack backing the given
// role in the pane node nearest the active leaf, and makes that role the
// pane's active child so compact layouts reveal it.
func (m *Mutator) NavigateToPane(root NavNode, role string, dest Destination) (NavNode, error) {
	leafPath := ActiveLeafPath(root)
	var pane *PaneNode
	for i := len(leafPath) - 1; i >= 0; i-- {
		if p, ok := leafPath[i].(*PaneNode); ok {
			pane = p
			break
		}
	}
	if pane == nil {
		return root, ErrUnknownPaneRole
	}
	idx := slices.IndexFunc(pane.children, func(c PaneChild) bool { return c.Role == role })
	if idx < 0 {
		return root, ErrUnknownPaneRole
	}
	stack := pane.children[idx].Stack
	screen := NewScreen(m.nextKey(), dest)
	children := append(slices.Clone(stack.children), NavNode(screen))
	next := pane.withChildStack(idx, stack.withChildren(children)).withActive(idx)
	return rebuildPath(pathToKey(root, pane.key), next), nil
}

// ActivatePane makes the given role the active child of the pane node
// nearest the active leaf without touching any stack contents, the pane
// counterpart of SwitchTab.
func (m *Mutator) ActivatePane(root NavNode, role string) (NavNode, error) {
	leafPath := ActiveLeafPath(root)
	var pane *PaneNode
	for i := len(leafPath) - 1; i >= 0; i-- {
		if p, ok := leafPath[i].(*PaneNode); ok {
			pane = p
			break
		}
	}
	if pane == nil {
		return root, ErrUnknownPaneRole
	}
	idx := slices.IndexFunc(pane.children, func(c PaneChild) bool { return c.Role == role })
	if idx < 0 {
		return root, ErrUnknownPaneRole
	}
	if idx == pane.active {
		return root, nil
	}
	return rebuildPath(pathToKey(root, pane.key), pane.withActive(idx)), nil
}

// SetLayoutMode rewrites every pane node to the given layout mode. Subtrees
// without panes are reused by reference.
func SetLayoutMode(n NavNode, mode LayoutMode) NavNode {
	switch v := n.(type) {
	case *ScreenNode:
		return v
	case *StackNode:
		var children []NavNode
		for i, c := range v.children {
			next := SetLayoutMode(c, mode)
			if next != c && children == nil {
				children = slices.Clone(v.children)
			}
			if children != nil {
				children[i] = next
			}
		}
		if children == nil {
			return v
		}
		return v.withChildren(children)
	case *TabNode:
		var lanes []*StackNode
		for i, l := range v.lanes {
			next := SetLayoutMode(l, mode).(*StackNode)
			if next != l && lanes == nil {
				lanes = slices.Clone(v.lanes)
			}
			if lanes != nil {
				lanes[i] = next
			}
		}
		if lanes == nil {
			return v
		}
		dup := *v
		dup.lanes = lanes
		return &dup
	case *PaneNode:
		dup := *v
		dup.children = slices.Clone(v.children)
		for i, c := range v.children {
			dup.children[i].Stack = SetLayoutMode(c.Stack, mode).(*StackNode)
		}
		dup.mode = mode
		if dup.mode == v.mode {
			same := true
			for i := range dup.children {
				if dup.children[i].Stack != v.children[i].Stack {
					same = false
					break
				}
			}
			if same {
				return v
			}
		}
		return &dup
	}
	return n
}

// activeStackPath descends from root to the stack that owns the active leaf,
// returning the container chain (root first, stack last).
func activeStackPath(root NavNode) (Path, *StackNode, error) {
	var path Path
	n := root
	for n != nil {
		switch v := n.(type) {
		case *StackNode:
			path = append(path, v)
			top := v.Top()
			if top == nil || !IsContainer(top) {
				return path, v, nil
			}
			n = top
		case *TabNode:
			path = append(path, v)
			lane := v.ActiveLane()
			if lane == nil {
				return nil, nil, ErrNoActiveStack
			}
			n = lane
		case *PaneNode:
			path = append(path, v)
			child, ok := v.ActiveChild()
			if !ok {
				return nil, nil, ErrNoActiveStack
			}
			n = child.Stack
		default:
			return nil, nil, ErrNoActiveStack
		}
	}
	return nil, nil, ErrNoActiveStack
}

// pathToKey returns the root-to-node chain ending at key, or nil.
func pathToKey(root NavNode, key Key) Path {
	if root == nil {
		return nil
	}
	if root.Key() == key {
		return Path{root}
	}
	var children []NavNode
	switch v := root.(type) {
	case *StackNode:
		children = v.children
	case *TabNode:
		for _, l := range v.lanes {
			children = append(children, l)
		}
	case *PaneNode:
		for _, c := range v.children {
			children = append(children, c.Stack)
		}
	}
	for _, c := range children {
		if sub := pathToKey(c, key); sub != nil {
			return append(Path{root}, sub...)
		}
	}
	return nil
}

// rebuildPath rebuilds the ancestor chain above a replaced node. The
// replacement must keep the key of the node it replaces; siblings and every
// untouched subtree keep their identity.
func rebuildPath(path Path, replacement NavNode) NavNode {
	node := replacement
	for i := len(path) - 2; i >= 0; i-- {
		childKey := node.Key()
		switch parent := path[i].(type) {
		case *StackNode:
			idx := slices.IndexFunc(parent.children, func(n NavNode) bool { return n.Key() == childKey })
			children := slices.Clone(parent.children)
			children[idx] = node
			node = parent.withChildren(children)
		case *TabNode:
			idx := slices.IndexFunc(parent.lanes, func(l *StackNode) bool { return l.Key() == childKey })
			node = parent.withLane(idx, node.(*StackNode))
		case *PaneNode:
			idx := slices.IndexFunc(parent.children, func(c PaneChild) bool { return c.Stack.Key() == childKey })
			node = parent.withChildStack(idx, node.(*StackNode))
		}
	}
	return node
}
