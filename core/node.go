package core

import "slices"

// Key is a process-unique, stable node identifier. It is assigned at node
// creation and never reused while the node is live.
type Key string

// Kind tags the variants of the NavNode union.
type Kind int

const (
	KindScreen Kind = iota
	KindStack
	KindTab
	KindPane
)

func (k Kind) String() string {
	switch k {
	case KindScreen:
		return "screen"
	case KindStack:
		return "stack"
	case KindTab:
		return "tab"
	case KindPane:
		return "pane"
	}
	return "unknown"
}

// NavNode is the closed union of navigation tree nodes. Every node carries a
// stable key and the key of its owning container. Nodes are immutable:
// mutations build new nodes and reuse untouched subtrees by reference.
//
// The union is sealed; all tree algorithms dispatch on Kind, never on
// behavior attached to the variants.
type NavNode interface {
	Key() Key
	Parent() Key
	Kind() Kind

	// withParent returns a copy owned by a different container.
	withParent(parent Key) NavNode
}

// TransitionSpec carries optional per-edge animation hints for a screen. The
// engine treats the hints as opaque labels for the rendering collaborator.
type TransitionSpec struct {
	Enter string
	Exit  string
}

// ScreenNode is a leaf showing one destination.
type ScreenNode struct {
	key        Key
	parent     Key
	dest       Destination
	transition TransitionSpec
}

// NewScreen builds a screen leaf. The parent key is assigned when the node
// is placed into a container.
func NewScreen(key Key, dest Destination) *ScreenNode {
	return &ScreenNode{key: key, dest: dest}
}

func (s *ScreenNode) Key() Key { return s.key }
func (s *ScreenNode) Parent() Key { return s.parent }
func (s *ScreenNode) Kind() Kind { return KindScreen }
func (s *ScreenNode) Destination() Destination { return s.dest }
func (s *ScreenNode) Transition() TransitionSpec { return s.transition }

// WithTransition returns a copy carrying the given per-edge hints.
func (s *ScreenNode) WithTransition(t TransitionSpec) *ScreenNode {
	dup := *s
	dup.transition = t
	return &dup
}

func (s *ScreenNode) withParent(parent Key) NavNode {
	if s.parent == parent {
		return s
	}
	dup := *s
	dup.parent = parent
	return &dup
}

// StackNode is an ordered history of child nodes; the last child is active.
// A stack with zero children is only transiently valid: it must receive a
// push or be removed by its parent.
type StackNode struct {
	key      Key
	parent   Key
	children []NavNode
}

// NewStack builds a stack owning the given children in history order.
func NewStack(key Key, children ...NavNode) *StackNode {
	s := &StackNode{key: key, children: make([]NavNode, len(children))}
	for i, c := range children {
		s.children[i] = c.withParent(key)
	}
	return s
}

func (s *StackNode) Key() Key { return s.key }
func (s *StackNode) Parent() Key { return s.parent }
func (s *StackNode) Kind() Kind { return KindStack }
func (s *StackNode) Len() int { return len(s.children) }

// Children returns the child list. The slice must not be mutated.
func (s *StackNode) Children() []NavNode { return s.children }

// Top returns the active (last) child, or nil for an empty stack.
func (s *StackNode) Top() NavNode {
	if len(s.children) == 0 {
		return nil
	}
	return s.children[len(s.children)-1]
}

func (s *StackNode) withParent(parent Key) NavNode {
	if s.parent == parent {
		return s
	}
	dup := *s
	dup.parent = parent
	return &dup
}

// withChildren returns a copy owning the given child list. Children are
// re-parented only when needed, preserving structural sharing.
func (s *StackNode) withChildren(children []NavNode) *StackNode {
	dup := *s
	dup.children = make([]NavNode, len(children))
	for i, c := range children {
		dup.children[i] = c.withParent(s.key)
	}
	return &dup
}

// TabNode is a fixed-size collection of stack lanes plus an active index.
// Each lane keeps its own history independently of tab switches.
type TabNode struct {
	key    Key
	parent Key
	lanes  []*StackNode
	active int
}

// NewTab builds a tab node. The active index must satisfy
// 0 <= active < len(lanes); out-of-range values are a caller bug and are
// normalized to 0 so a fresh tab is always well-formed.
func NewTab(key Key, active int, lanes ...*StackNode) *TabNode {
	t := &TabNode{key: key, lanes: make([]*StackNode, len(lanes)), active: active}
	if active < 0 || active >= len(lanes) {
		t.active = 0
	}
	for i, l := range lanes {
		t.lanes[i] = l.withParent(key).(*StackNode)
	}
	return t
}

func (t *TabNode) Key() Key { return t.key }
func (t *TabNode) Parent() Key { return t.parent }
func (t *TabNode) Kind() Kind { return KindTab }
func (t *TabNode) ActiveIndex() int { return t.active }
func (t *TabNode) Len() int { return len(t.lanes) }

// Lanes returns the lane list. The slice must not be mutated.
func (t *TabNode) Lanes() []*StackNode { return t.lanes }

// ActiveLane returns the lane at the active index, or nil for a laneless tab.
func (t *TabNode) ActiveLane() *StackNode {
	if t.active < 0 || t.active >= len(t.lanes) {
		return nil
	}
	return t.lanes[t.active]
}

func (t *TabNode) withParent(parent Key) NavNode {
	if t.parent == parent {
		return t
	}
	dup := *t
	dup.parent = parent
	return &dup
}

func (t *TabNode) withLane(index int, lane *StackNode) *TabNode {
	dup := *t
	dup.lanes = slices.Clone(t.lanes)
	dup.lanes[index] = lane.withParent(t.key).(*StackNode)
	return &dup
}

func (t *TabNode) withActive(index int) *TabNode {
	dup := *t
	dup.active = index
	return &dup
}

// LayoutMode is the externally supplied adaptive layout signal for panes.
type LayoutMode int

const (
	// LayoutCompact renders a pane node like a stack over its active child.
	LayoutCompact LayoutMode = iota
	// LayoutExpanded renders every pane child its adapt strategy marks
	// visible, simultaneously.
	LayoutExpanded
)

func (m LayoutMode) String() string {
	if m == LayoutExpanded {
		return "expanded"
	}
	return "compact"
}

// PaneVisibility is the adapt strategy of one pane child.
type PaneVisibility int

const (
	// VisibleWhenExpanded shows the child whenever the pane is expanded.
	VisibleWhenExpanded PaneVisibility = iota
	// VisibleWhenActive shows the child only while it is the active child,
	// regardless of layout mode.
	VisibleWhenActive
)

// PaneChild is one role-tagged child of a PaneNode, backed by its own stack.
type PaneChild struct {
	Role       string
	Visibility PaneVisibility
	Stack      *StackNode
}

// PaneNode is an ordered collection of role-tagged children plus a layout
// mode. In compact mode exactly one child is active; in expanded mode all
// strategy-visible children are simultaneously active.
type PaneNode struct {
	key      Key
	parent   Key
	children []PaneChild
	active   int
	mode     LayoutMode
}

// NewPane builds a pane node. The active index addresses the child shown in
// compact mode and the focused child in expanded mode; out-of-range values
// are normalized to 0.
func NewPane(key Key, mode LayoutMode, active int, children ...PaneChild) *PaneNode {
	p := &PaneNode{key: key, mode: mode, active: active, children: make([]PaneChild, len(children))}
	if active < 0 || active >= len(children) {
		p.active = 0
	}
	for i, c := range children {
		c.Stack = c.Stack.withParent(key).(*StackNode)
		p.children[i] = c
	}
	return p
}

func (p *PaneNode) Key() Key { return p.key }
func (p *PaneNode) Parent() Key { return p.parent }
func (p *PaneNode) Kind() Kind { return KindPane }
func (p *PaneNode) Mode() LayoutMode { return p.mode }
func (p *PaneNode) ActiveIndex() int { return p.active }
func (p *PaneNode) Len() int { return len(p.children) }

// Children returns the pane child list. The slice must not be mutated.
func (p *PaneNode) Children() []PaneChild { return p.children }

// Child looks up a pane child by role.
func (p *PaneNode) Child(role string) (PaneChild, bool) {
	for _, c := range p.children {
		if c.Role == role {
			return c, true
		}
	}
	return PaneChild{}, false
}

// ActiveChild returns the child at the active index.
func (p *PaneNode) ActiveChild() (PaneChild, bool) {
	if p.active < 0 || p.active >= len(p.children) {
		return PaneChild{}, false
	}
	return p.children[p.active], true
}

func (p *PaneNode) withParent(parent Key) NavNode {
	if p.parent == parent {
		return p
	}
	dup := *p
	dup.parent = parent
	return &dup
}

func (p *PaneNode) withChildStack(index int, stack *StackNode) *PaneNode {
	dup := *p
	dup.children = slices.Clone(p.children)
	dup.children[index].Stack = stack.withParent(p.key).(*StackNode)
	return &dup
}

func (p *PaneNode) withActive(index int) *PaneNode {
	dup := *p
	dup.active = index
	return &dup
}

func (p *PaneNode) withMode(mode LayoutMode) *PaneNode {
	dup := *p
	dup.mode = mode
	return &dup
}

// IsContainer reports whether the node owns children.
func IsContainer(n NavNode) bool {
	return n != nil && n.Kind() != KindScreen
}

// Path is a root-to-leaf chain of nodes.
type Path []NavNode

// Leaf returns the last node on the path, or nil for an empty path.
func (p Path) Leaf() NavNode {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// ActiveLeafPaths derives the path(s) from the given node to the currently
// visible screen(s). Stack follows its last child, tab follows the active
// lane, a compact pane follows its active child, and an expanded pane yields
// one path per strategy-visible child. Containers with nothing visible
// contribute no paths.
func ActiveLeafPaths(n NavNode) []Path {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *ScreenNode:
		return []Path{{v}}
	case *StackNode:
		top := v.Top()
		if top == nil {
			return nil
		}
		return prependToPaths(v, ActiveLeafPaths(top))
	case *TabNode:
		lane := v.ActiveLane()
		if lane == nil {
			return nil
		}
		return prependToPaths(v, ActiveLeafPaths(lane))
	case *PaneNode:
		if v.mode == LayoutCompact {
			child, ok := v.ActiveChild()
			if !ok {
				return nil
			}
			return prependToPaths(v, ActiveLeafPaths(child.Stack))
		}
		var paths []Path
		for i, c := range v.children {
			if c.Visibility == VisibleWhenActive && i != v.active {
				continue
			}
			paths = append(paths, prependToPaths(v, ActiveLeafPaths(c.Stack))...)
		}
		return paths
	}
	return nil
}

// ActiveLeafPath returns the single active path for compact contexts. For an
// expanded pane it returns the path through the focused child.
func ActiveLeafPath(n NavNode) Path {
	paths := ActiveLeafPaths(n)
	if len(paths) == 0 {
		return nil
	}
	if len(paths) == 1 {
		return paths[0]
	}
	// Prefer the path passing through each pane's active child.
	for _, p := range paths {
		if pathThroughActive(p) {
			return p
		}
	}
	return paths[0]
}

func pathThroughActive(p Path) bool {
	for i, n := range p {
		pane, ok := n.(*PaneNode)
		if !ok || i+1 >= len(p) {
			continue
		}
		child, ok := pane.ActiveChild()
		if !ok || child.Stack.Key() != p[i+1].Key() {
			return false
		}
	}
	return true
}

func prependToPaths(n NavNode, paths []Path) []Path {
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		joined := make(Path, 0, len(p)+1)
		joined = append(joined, n)
		joined = append(joined, p...)
		out = append(out, joined)
	}
	return out
}

// Index maps node keys to nodes for parent lookups. It is rebuilt alongside
// each mutation; back-pointers inside nodes would break structural sharing.
type Index map[Key]NavNode

// BuildIndex walks the tree and indexes every node by key.
func BuildIndex(root NavNode) Index {
	idx := make(Index)
	Walk(root, func(n NavNode) bool {
		idx[n.Key()] = n
		return true
	})
	return idx
}

// Walk visits every node depth-first, parents before children. The visit
// function returns false to skip a node's children.
func Walk(n NavNode, visit func(NavNode) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch v := n.(type) {
	case *StackNode:
		for _, c := range v.children {
			Walk(c, visit)
		}
	case *TabNode:
		for _, l := range v.lanes {
			Walk(l, visit)
		}
	case *PaneNode:
		for _, c := range v.children {
			Walk(c.Stack, visit)
		}
	}
}

// StructuralEqual compares two trees by shape, destinations, active indices,
// roles and modes, ignoring node keys. Operations that mint fresh keys (such
// as replace) are compared with this, not DeepEqual.
func StructuralEqual(a, b NavNode) bool {
	return treeEqual(a, b, false)
}

// DeepEqual compares two trees including node keys.
func DeepEqual(a, b NavNode) bool {
	return treeEqual(a, b, true)
}

func treeEqual(a, b NavNode, keys bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if keys && (a.Key() != b.Key() || a.Parent() != b.Parent()) {
		return false
	}
	switch av := a.(type) {
	case *ScreenNode:
		bv := b.(*ScreenNode)
		return av.dest.Equal(bv.dest) && av.transition == bv.transition
	case *StackNode:
		bv := b.(*StackNode)
		if len(av.children) != len(bv.children) {
			return false
		}
		for i := range av.children {
			if !treeEqual(av.children[i], bv.children[i], keys) {
				return false
			}
		}
		return true
	case *TabNode:
		bv := b.(*TabNode)
		if len(av.lanes) != len(bv.lanes) || av.active != bv.active {
			return false
		}
		for i := range av.lanes {
			if !treeEqual(av.lanes[i], bv.lanes[i], keys) {
				return false
			}
		}
		return true
	case *PaneNode:
		bv := b.(*PaneNode)
		if len(av.children) != len(bv.children) || av.active != bv.active || av.mode != bv.mode {
			return false
		}
		for i := range av.children {
			ac, bc := av.children[i], bv.children[i]
			if ac.Role != bc.Role || ac.Visibility != bc.Visibility {
				return false
			}
			if !treeEqual(ac.Stack, bc.Stack, keys) {
				return false
			}
		}
		return true
	}
	return false
}
