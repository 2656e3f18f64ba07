package route

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/jask/waypoint/core"
)

// Resolver matches deep link URIs against a route table and synthesizes the
// tree changes needed to host the destination. Matching is most-specific
// first (literal segment count); equally specific routes match in
// registration order, first registered wins.
//
// Resolution never discards unrelated history: an existing tab lane is
// activated rather than rebuilt, an already-visible destination is not
// pushed twice, and every untouched subtree keeps its identity.
type Resolver struct {
	mu     sync.RWMutex
	mut    *core.Mutator
	routes []*compiledRoute
}

// NewResolver compiles a registry into a resolver.
func NewResolver(reg *Registry) (*Resolver, error) {
	r := &Resolver{mut: core.NewMutator()}
	for _, rt := range reg.Routes() {
		if err := r.register(rt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SetKeyFunc overrides key generation for nodes minted during resolution.
func (r *Resolver) SetKeyFunc(fn func() core.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mut.NewKey = fn
}

// Register adds a route template after construction. A route with an
// existing pattern replaces it.
func (r *Resolver) Register(rt Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(rt)
}

func (r *Resolver) register(rt Route) error {
	c, err := compile(rt, len(r.routes))
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(r.routes, func(e *compiledRoute) bool { return e.route.Pattern == rt.Pattern })
	if idx >= 0 {
		c.order = r.routes[idx].order
		r.routes[idx] = c
	} else {
		r.routes = append(r.routes, c)
	}
	slices.SortStableFunc(r.routes, func(a, b *compiledRoute) int {
		if a.literals != b.literals {
			return b.literals - a.literals
		}
		return a.order - b.order
	})
	return nil
}

// Resolve turns a URI into a new tree against the current tree. Any failure
// returns the error with a nil tree; the caller's tree is never touched.
func (r *Resolver) Resolve(uri string, current core.NavNode) (core.NavNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scheme, segments, query, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	for _, c := range r.routes {
		pathParams, ok := c.match(scheme, segments)
		if !ok {
			continue
		}
		dest, err := bindParams(c.route, pathParams, query)
		if err != nil {
			return nil, err
		}
		return r.attach(current, c.route, dest)
	}
	if hint := r.nearestPattern(scheme, segments); hint != "" {
		return nil, fmt.Errorf("%w: no route matches %q (closest template %q)", core.ErrMalformedDeepLink, uri, hint)
	}
	return nil, fmt.Errorf("%w: no route matches %q", core.ErrMalformedDeepLink, uri)
}

// nearestPattern names the registered template closest to the failed URI by
// edit distance, for diagnostics only.
func (r *Resolver) nearestPattern(scheme string, segments []string) string {
	normalized := scheme + "://" + strings.Join(segments, "/")
	best, bestDist := "", -1
	for _, c := range r.routes {
		d := levenshtein.ComputeDistance(normalized, c.route.Pattern)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c.route.Pattern, d
		}
	}
	if bestDist < 0 || bestDist > len(normalized)/2 {
		return ""
	}
	return best
}

func parseURI(uri string) (string, []string, url.Values, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return "", nil, nil, fmt.Errorf("%w: %q has no scheme", core.ErrMalformedDeepLink, uri)
	}
	pathPart, queryPart, _ := strings.Cut(rest, "?")
	if pathPart == "" {
		return "", nil, nil, fmt.Errorf("%w: %q has no path", core.ErrMalformedDeepLink, uri)
	}
	raw := strings.Split(pathPart, "/")
	segments := make([]string, len(raw))
	for i, s := range raw {
		unescaped, err := url.PathUnescape(s)
		if err != nil {
			return "", nil, nil, fmt.Errorf("%w: bad path segment %q", core.ErrMalformedDeepLink, s)
		}
		segments[i] = unescaped
	}
	query, err := url.ParseQuery(queryPart)
	if err != nil {
		return "", nil, nil, fmt.Errorf("%w: bad query string: %v", core.ErrMalformedDeepLink, err)
	}
	return scheme, segments, query, nil
}

// bindParams converts path and query parameters into destination arguments.
func bindParams(rt Route, pathParams map[string]string, query url.Values) (core.Destination, error) {
	declared := make(map[string]Param, len(rt.Params))
	for _, p := range rt.Params {
		declared[p.Name] = p
	}

	args := make([]core.Arg, 0, len(pathParams)+len(rt.Params))
	for name, raw := range pathParams {
		t := TypeString
		if p, ok := declared[name]; ok {
			t = p.Type
		}
		v, err := convert(raw, t)
		if err != nil {
			return core.Destination{}, fmt.Errorf("%w: path parameter %q: %v", core.ErrMalformedDeepLink, name, err)
		}
		args = append(args, core.Arg{Name: name, Value: v})
	}

	for _, p := range rt.Params {
		if _, fromPath := pathParams[p.Name]; fromPath {
			continue
		}
		raw, present := firstQueryValue(query, p.Name)
		if !present {
			if p.Required {
				return core.Destination{}, fmt.Errorf("%w: missing required parameter %q", core.ErrMalformedDeepLink, p.Name)
			}
			args = append(args, core.Arg{Name: p.Name, Value: p.Default})
			continue
		}
		v, err := convert(raw, p.Type)
		if err != nil {
			if p.Required {
				return core.Destination{}, fmt.Errorf("%w: parameter %q: %v", core.ErrMalformedDeepLink, p.Name, err)
			}
			args = append(args, core.Arg{Name: p.Name, Value: p.Default})
			continue
		}
		args = append(args, core.Arg{Name: p.Name, Value: v})
	}
	return core.NewDestination(rt.Tag, args...), nil
}

func firstQueryValue(query url.Values, name string) (string, bool) {
	vs, ok := query[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// attach hosts the destination under the route's container chain.
func (r *Resolver) attach(current core.NavNode, rt Route, dest core.Destination) (core.NavNode, error) {
	if current == nil {
		screen := core.NewScreen(r.mut.NewKey(), dest)
		return core.NewStack(r.mut.NewKey(), screen), nil
	}

	switch {
	case rt.Anchor.PaneRole != "":
		return r.attachPane(current, rt.Anchor.PaneRole, dest)
	case rt.Anchor.Lane >= 0:
		return r.attachLane(current, rt.Anchor.Lane, dest)
	}
	if topDestination(core.ActiveLeafPath(current)).Equal(dest) {
		return current, nil
	}
	return r.mut.Push(current, dest)
}

func (r *Resolver) attachPane(current core.NavNode, role string, dest core.Destination) (core.NavNode, error) {
	pane := nearestPane(current)
	if pane != nil {
		if child, ok := pane.Child(role); ok {
			if top, ok := child.Stack.Top().(*core.ScreenNode); ok && top.Destination().Equal(dest) {
				// Already hosted; just reveal the role.
				return r.mut.ActivatePane(current, role)
			}
		}
	}
	return r.mut.NavigateToPane(current, role, dest)
}

func (r *Resolver) attachLane(current core.NavNode, lane int, dest core.Destination) (core.NavNode, error) {
	tab := firstTab(current)
	if tab == nil {
		return nil, fmt.Errorf("%w: no tab node hosts lane %d", core.ErrUnknownTab, lane)
	}
	if lane >= tab.Len() {
		return nil, &core.IndexError{Op: "resolve", Index: lane, Len: tab.Len()}
	}
	next, err := r.mut.SwitchTab(current, tab.Key(), lane)
	if err != nil {
		return nil, err
	}
	lanes := firstTab(next).Lanes()
	if top, ok := lanes[lane].Top().(*core.ScreenNode); ok && top.Destination().Equal(dest) {
		// Activating the lane suffices; never push a duplicate path.
		return next, nil
	}
	return r.mut.Push(next, dest)
}

func topDestination(path core.Path) core.Destination {
	if screen, ok := path.Leaf().(*core.ScreenNode); ok {
		return screen.Destination()
	}
	return core.Destination{}
}

func nearestPane(root core.NavNode) *core.PaneNode {
	path := core.ActiveLeafPath(root)
	for i := len(path) - 1; i >= 0; i-- {
		if p, ok := path[i].(*core.PaneNode); ok {
			return p
		}
	}
	return nil
}

func firstTab(root core.NavNode) *core.TabNode {
	var tab *core.TabNode
	core.Walk(root, func(n core.NavNode) bool {
		if tab != nil {
			return false
		}
		if t, ok := n.(*core.TabNode); ok {
			tab = t
			return false
		}
		return true
	})
	return tab
}
