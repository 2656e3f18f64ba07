package core

import "testing"

func TestFlattenStackEmitsTopOnly(t *testing.T) {
	root := NewStack("root", screen("a", "a"), screen("b", "b"), screen("c", "c"))

	surfaces := Flatten(root)
	if len(surfaces) != 1 {
		t.Fatalf("surfaces = %d, want 1", len(surfaces))
	}
	s := surfaces[0]
	if s.Destination.Tag() != "c" || s.ZOrder != 0 {
		t.Fatalf("surface = %+v", s)
	}
	if s.StateSlot != string(s.Key) {
		t.Fatalf("state slot %q must track the node key %q", s.StateSlot, s.Key)
	}
}

func TestFlattenInactiveLanesCostNothing(t *testing.T) {
	tab := NewTab("tab", 0,
		NewStack("lane0", screen("a", "a")),
		NewStack("lane1", screen("b", "b"), screen("c", "c")),
	)

	surfaces := Flatten(tab)
	if len(surfaces) != 1 || surfaces[0].Destination.Tag() != "a" {
		t.Fatalf("surfaces = %+v, want only lane0 top", surfaces)
	}
}

func TestFlattenExpandedPaneEmitsRoles(t *testing.T) {
	pane := NewPane("pane", LayoutExpanded, 0,
		PaneChild{Role: "primary", Visibility: VisibleWhenExpanded, Stack: NewStack("ps", screen("list", "list"))},
		PaneChild{Role: "supporting", Visibility: VisibleWhenExpanded, Stack: NewStack("ss", screen("detail", "detail"))},
		PaneChild{Role: "extra", Visibility: VisibleWhenActive, Stack: NewStack("es", screen("x", "x"))},
	)

	surfaces := Flatten(pane)
	if len(surfaces) != 2 {
		t.Fatalf("surfaces = %d, want 2", len(surfaces))
	}
	if surfaces[0].Role != "primary" || surfaces[1].Role != "supporting" {
		t.Fatalf("roles = %s, %s", surfaces[0].Role, surfaces[1].Role)
	}
	if surfaces[0].ZOrder != 0 || surfaces[1].ZOrder != 1 {
		t.Fatalf("z orders = %d, %d; emission order decides Z", surfaces[0].ZOrder, surfaces[1].ZOrder)
	}
}

func TestFlattenCompactPaneBehavesLikeStack(t *testing.T) {
	pane := NewPane("pane", LayoutCompact, 1,
		PaneChild{Role: "primary", Stack: NewStack("ps", screen("list", "list"))},
		PaneChild{Role: "supporting", Stack: NewStack("ss", screen("detail", "detail"))},
	)

	surfaces := Flatten(pane)
	if len(surfaces) != 1 || surfaces[0].Role != "supporting" {
		t.Fatalf("surfaces = %+v", surfaces)
	}
}

func TestFlattenRootPushOutranksNestedContent(t *testing.T) {
	pane := NewPane("pane", LayoutExpanded, 0,
		PaneChild{Role: "primary", Visibility: VisibleWhenExpanded, Stack: NewStack("ps", screen("list", "list"))},
		PaneChild{Role: "supporting", Visibility: VisibleWhenExpanded, Stack: NewStack("ss", screen("detail", "detail"))},
	)
	root := NewStack("root", pane)

	m := seqMutator()
	pushed, err := m.Push(root, dest("sheet"))
	if err != nil {
		t.Fatalf("push: %v", err)
	}

	surfaces := Flatten(pushed)
	if len(surfaces) != 1 || surfaces[0].Destination.Tag() != "sheet" {
		t.Fatalf("a screen pushed over the pane must cover it: %+v", surfaces)
	}
}

func TestFlattenCompleteness(t *testing.T) {
	pane := NewPane("pane", LayoutExpanded, 0,
		PaneChild{Role: "primary", Visibility: VisibleWhenExpanded, Stack: NewStack("ps", screen("list", "list"))},
		PaneChild{Role: "supporting", Visibility: VisibleWhenExpanded, Stack: NewStack("ss", screen("detail", "detail"))},
	)
	tab := NewTab("tab", 1,
		NewStack("lane0", screen("a", "a")),
		NewStack("lane1", pane),
	)

	surfaces := Flatten(tab)
	paths := ActiveLeafPaths(tab)
	if len(surfaces) != len(paths) {
		t.Fatalf("%d surfaces for %d active leaves", len(surfaces), len(paths))
	}
	for i, p := range paths {
		if surfaces[i].Key != p.Leaf().Key() {
			t.Fatalf("surface %d = %s, leaf = %s", i, surfaces[i].Key, p.Leaf().Key())
		}
	}
}

func TestFlattenEmptyLaneEmitsNothing(t *testing.T) {
	tab := NewTab("tab", 0, NewStack("lane0"))
	if got := Flatten(tab); len(got) != 0 {
		t.Fatalf("empty lane surfaces = %+v", got)
	}
}

func TestFlattenCarriesTransitionHints(t *testing.T) {
	hinted := NewScreen("s", dest("detail")).WithTransition(TransitionSpec{Enter: "slide", Exit: "fade"})
	root := NewStack("root", hinted)

	surfaces := Flatten(root)
	if surfaces[0].Transition.Enter != "slide" || surfaces[0].Transition.Exit != "fade" {
		t.Fatalf("transition hints dropped: %+v", surfaces[0].Transition)
	}
}
