package core

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SnapshotVersion is the current wire schema version.
const SnapshotVersion = 1

// The snapshot contract preserves node kind, key, parent key and destination
// tag+arguments, enough to reconstruct an identical tree after process
// death. Decoding re-validates every structural invariant and fails with
// ErrInvalidSnapshot instead of repairing a malformed tree.

type wireSnapshot struct {
	Version int       `json:"version"`
	Root    *wireNode `json:"root"`
}

type wireNode struct {
	Kind        string          `json:"kind"`
	Key         string          `json:"key"`
	Parent      string          `json:"parent,omitempty"`
	Destination *wireDest       `json:"destination,omitempty"`
	Transition  *wireTransition `json:"transition,omitempty"`
	Children    []*wireNode     `json:"children,omitempty"`
	Lanes       []*wireNode     `json:"lanes,omitempty"`
	Panes       []*wirePane     `json:"panes,omitempty"`
	ActiveIndex *int            `json:"activeIndex,omitempty"`
	Mode        string          `json:"mode,omitempty"`
}

type wirePane struct {
	Role       string    `json:"role"`
	Visibility string    `json:"visibility"`
	Stack      *wireNode `json:"stack"`
}

type wireDest struct {
	Tag  string    `json:"tag"`
	Args []wireArg `json:"args,omitempty"`
}

type wireArg struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type wireTransition struct {
	Enter string `json:"enter,omitempty"`
	Exit  string `json:"exit,omitempty"`
}

// EncodeSnapshot serializes a tree per the snapshot contract.
func EncodeSnapshot(root NavNode) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidSnapshot)
	}
	return json.Marshal(wireSnapshot{Version: SnapshotVersion, Root: encodeNode(root)})
}

// DecodeSnapshot reconstructs a tree from snapshot bytes, re-validating all
// structural invariants.
func DecodeSnapshot(data []byte) (NavNode, error) {
	var snap wireSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	if snap.Root == nil {
		return nil, fmt.Errorf("%w: missing root", ErrInvalidSnapshot)
	}
	seen := make(map[Key]bool)
	return decodeNode(snap.Root, "", seen)
}

func encodeNode(n NavNode) *wireNode {
	w := &wireNode{
		Kind:   n.Kind().String(),
		Key:    string(n.Key()),
		Parent: string(n.Parent()),
	}
	switch v := n.(type) {
	case *ScreenNode:
		w.Destination = encodeDest(v.dest)
		if v.transition != (TransitionSpec{}) {
			w.Transition = &wireTransition{Enter: v.transition.Enter, Exit: v.transition.Exit}
		}
	case *StackNode:
		w.Children = make([]*wireNode, len(v.children))
		for i, c := range v.children {
			w.Children[i] = encodeNode(c)
		}
	case *TabNode:
		w.Lanes = make([]*wireNode, len(v.lanes))
		for i, l := range v.lanes {
			w.Lanes[i] = encodeNode(l)
		}
		active := v.active
		w.ActiveIndex = &active
	case *PaneNode:
		w.Panes = make([]*wirePane, len(v.children))
		for i, c := range v.children {
			w.Panes[i] = &wirePane{
				Role:       c.Role,
				Visibility: encodeVisibility(c.Visibility),
				Stack:      encodeNode(c.Stack),
			}
		}
		active := v.active
		w.ActiveIndex = &active
		w.Mode = v.mode.String()
	}
	return w
}

func decodeNode(w *wireNode, parent Key, seen map[Key]bool) (NavNode, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: missing node", ErrInvalidSnapshot)
	}
	key := Key(w.Key)
	if key == "" {
		return nil, fmt.Errorf("%w: node without key", ErrInvalidSnapshot)
	}
	if seen[key] {
		return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidSnapshot, key)
	}
	seen[key] = true
	if Key(w.Parent) != parent {
		return nil, fmt.Errorf("%w: node %q declares parent %q, owned by %q", ErrInvalidSnapshot, key, w.Parent, parent)
	}

	switch w.Kind {
	case "screen":
		if w.Destination == nil || w.Destination.Tag == "" {
			return nil, fmt.Errorf("%w: screen %q without destination", ErrInvalidSnapshot, key)
		}
		if len(w.Children) > 0 || len(w.Lanes) > 0 || len(w.Panes) > 0 {
			return nil, fmt.Errorf("%w: screen %q carries children", ErrInvalidSnapshot, key)
		}
		dest, err := decodeDest(w.Destination)
		if err != nil {
			return nil, err
		}
		screen := NewScreen(key, dest)
		if w.Transition != nil {
			screen = screen.WithTransition(TransitionSpec{Enter: w.Transition.Enter, Exit: w.Transition.Exit})
		}
		return screen.withParent(parent), nil

	case "stack":
		children := make([]NavNode, len(w.Children))
		for i, c := range w.Children {
			child, err := decodeNode(c, key, seen)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return NewStack(key, children...).withParent(parent), nil

	case "tab":
		if len(w.Lanes) == 0 {
			return nil, fmt.Errorf("%w: tab %q without lanes", ErrInvalidSnapshot, key)
		}
		if w.ActiveIndex == nil || *w.ActiveIndex < 0 || *w.ActiveIndex >= len(w.Lanes) {
			return nil, fmt.Errorf("%w: tab %q active index out of range", ErrInvalidSnapshot, key)
		}
		lanes := make([]*StackNode, len(w.Lanes))
		for i, l := range w.Lanes {
			node, err := decodeNode(l, key, seen)
			if err != nil {
				return nil, err
			}
			lane, ok := node.(*StackNode)
			if !ok {
				return nil, fmt.Errorf("%w: tab %q lane %d is a %s, want stack", ErrInvalidSnapshot, key, i, node.Kind())
			}
			lanes[i] = lane
		}
		return NewTab(key, *w.ActiveIndex, lanes...).withParent(parent), nil

	case "pane":
		if len(w.Panes) == 0 {
			return nil, fmt.Errorf("%w: pane %q without children", ErrInvalidSnapshot, key)
		}
		if w.ActiveIndex == nil || *w.ActiveIndex < 0 || *w.ActiveIndex >= len(w.Panes) {
			return nil, fmt.Errorf("%w: pane %q active index out of range", ErrInvalidSnapshot, key)
		}
		mode, err := decodeMode(w.Mode)
		if err != nil {
			return nil, fmt.Errorf("pane %q: %w", key, err)
		}
		roles := make(map[string]bool, len(w.Panes))
		children := make([]PaneChild, len(w.Panes))
		for i, p := range w.Panes {
			if p.Role == "" {
				return nil, fmt.Errorf("%w: pane %q child %d without role", ErrInvalidSnapshot, key, i)
			}
			if roles[p.Role] {
				return nil, fmt.Errorf("%w: pane %q duplicate role %q", ErrInvalidSnapshot, key, p.Role)
			}
			roles[p.Role] = true
			vis, err := decodeVisibility(p.Visibility)
			if err != nil {
				return nil, fmt.Errorf("pane %q role %q: %w", key, p.Role, err)
			}
			node, err := decodeNode(p.Stack, key, seen)
			if err != nil {
				return nil, err
			}
			stack, ok := node.(*StackNode)
			if !ok {
				return nil, fmt.Errorf("%w: pane %q role %q backed by %s, want stack", ErrInvalidSnapshot, key, p.Role, node.Kind())
			}
			children[i] = PaneChild{Role: p.Role, Visibility: vis, Stack: stack}
		}
		return NewPane(key, mode, *w.ActiveIndex, children...).withParent(parent), nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSnapshot, w.Kind)
}

func encodeDest(d Destination) *wireDest {
	w := &wireDest{Tag: d.tag, Args: make([]wireArg, len(d.args))}
	for i, a := range d.args {
		w.Args[i] = wireArg{Name: a.Name, Type: a.Value.Kind().String(), Value: a.Value.String()}
	}
	return w
}

func decodeDest(w *wireDest) (Destination, error) {
	args := make([]Arg, 0, len(w.Args))
	for _, a := range w.Args {
		v, err := decodeValue(a.Type, a.Value)
		if err != nil {
			return Destination{}, fmt.Errorf("%w: argument %q: %v", ErrInvalidSnapshot, a.Name, err)
		}
		args = append(args, Arg{Name: a.Name, Value: v})
	}
	return NewDestination(w.Tag, args...), nil
}

func decodeValue(kind, raw string) (Value, error) {
	switch kind {
	case "string":
		return StringValue(raw), nil
	case "int":
		i, err := strconv.Atoi(raw)
		if err != nil {
			return Value{}, err
		}
		return IntValue(i), nil
	case "int64":
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Int64Value(i), nil
	case "float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	}
	return Value{}, fmt.Errorf("unknown value type %q", kind)
}

func encodeVisibility(v PaneVisibility) string {
	if v == VisibleWhenActive {
		return "active"
	}
	return "expanded"
}

func decodeVisibility(s string) (PaneVisibility, error) {
	switch s {
	case "expanded":
		return VisibleWhenExpanded, nil
	case "active":
		return VisibleWhenActive, nil
	}
	return 0, fmt.Errorf("%w: unknown visibility %q", ErrInvalidSnapshot, s)
}

func decodeMode(s string) (LayoutMode, error) {
	switch s {
	case "compact":
		return LayoutCompact, nil
	case "expanded":
		return LayoutExpanded, nil
	}
	return 0, fmt.Errorf("%w: unknown layout mode %q", ErrInvalidSnapshot, s)
}
