package core

// Surface is one renderable unit projected out of the tree. The rendering
// collaborator decides pixels; the engine decides only which surfaces are
// visible, their relative Z and their pane role.
type Surface struct {
	Key         Key
	Destination Destination
	ZOrder      int
	// StateSlot is a stable identifier the renderer uses to keep
	// per-surface UI state alive across re-flattening while the same node
	// persists.
	StateSlot string
	// Role is the pane role the surface renders under, empty outside pane
	// contexts.
	Role       string
	Transition TransitionSpec
}

// Flatten projects the active subset of the tree into an ordered, Z-indexed
// surface list. Stacks contribute their top child only, tabs contribute the
// active lane only (inactive lanes keep their history but cost no render
// work), compact panes behave like stacks, and expanded panes contribute
// every strategy-visible child tagged with its role.
//
// Z follows emission order; nesting depth alone never raises Z, so a surface
// pushed above a container at the root out-ranks anything inside it.
func Flatten(root NavNode) []Surface {
	f := flattener{}
	f.visit(root, "")
	return f.out
}

type flattener struct {
	out []Surface
	z   int
}

func (f *flattener) visit(n NavNode, role string) {
	switch v := n.(type) {
	case *ScreenNode:
		f.out = append(f.out, Surface{
			Key:         v.key,
			Destination: v.dest,
			ZOrder:      f.z,
			StateSlot:   string(v.key),
			Role:        role,
			Transition:  v.transition,
		})
		f.z++
	case *StackNode:
		if top := v.Top(); top != nil {
			f.visit(top, role)
		}
	case *TabNode:
		if lane := v.ActiveLane(); lane != nil {
			f.visit(lane, role)
		}
	case *PaneNode:
		if v.mode == LayoutCompact {
			if c, ok := v.ActiveChild(); ok {
				f.visit(c.Stack, c.Role)
			}
			return
		}
		for i, c := range v.children {
			if c.Visibility == VisibleWhenActive && i != v.active {
				continue
			}
			f.visit(c.Stack, c.Role)
		}
	}
}

func maxZ(surfaces []Surface) int {
	z := -1
	for _, s := range surfaces {
		if s.ZOrder > z {
			z = s.ZOrder
		}
	}
	return z
}
