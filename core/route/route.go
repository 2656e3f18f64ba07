package route

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jask/waypoint/core"
)

// ParamType names the conversions applied to path and query parameters.
type ParamType int

const (
	TypeString ParamType = iota
	TypeInt
	TypeInt64
	TypeFloat
	TypeBool
)

func (t ParamType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeInt64:
		return "int64"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	}
	return "unknown"
}

// Param declares one typed parameter of a route. A parameter whose name
// matches a {placeholder} in the pattern is bound from the path and is
// always required; other parameters are bound from the query string.
//
// A conversion failure on a required parameter fails the whole resolution.
// A missing or unconvertible optional parameter falls back to Default.
type Param struct {
	Name     string
	Type     ParamType
	Required bool
	Default  core.Value
}

// Anchor names the container chain a route's destination must live under:
// a tab lane, a pane role, or (both unset) the active stack.
type Anchor struct {
	// Lane is the tab lane index the destination belongs to, or -1 for
	// routes not bound to a tab.
	Lane int
	// PaneRole is the pane role the destination belongs to, or empty.
	PaneRole string
}

// ActiveStack anchors a route to whatever stack owns the active leaf.
func ActiveStack() Anchor { return Anchor{Lane: -1} }

// TabLane anchors a route to a lane of the tree's tab node.
func TabLane(index int) Anchor { return Anchor{Lane: index} }

// Pane anchors a route to a role of the active pane node.
func Pane(role string) Anchor { return Anchor{Lane: -1, PaneRole: role} }

// Route binds a URI template to a destination tag and its host containers.
// Templates look like "app://search/results/{id}"; path segments in braces
// bind named parameters, the query string binds the rest.
type Route struct {
	Pattern string
	Tag     string
	Params  []Param
	Anchor  Anchor
}

// Registry is an immutable route table. Registries compose by set union
// with override-on-conflict, so generated tables and hand-written extras can
// be merged without mutation.
type Registry struct {
	routes []Route
}

// NewRegistry builds a registry. Later routes with the same pattern override
// earlier ones.
func NewRegistry(routes ...Route) *Registry {
	r := &Registry{}
	for _, rt := range routes {
		r.routes = upsert(r.routes, rt)
	}
	return r
}

// Merge returns the union of two registries; the other registry wins on
// pattern conflicts. Neither input is modified.
func (r *Registry) Merge(other *Registry) *Registry {
	merged := &Registry{routes: append([]Route(nil), r.routes...)}
	for _, rt := range other.routes {
		merged.routes = upsert(merged.routes, rt)
	}
	return merged
}

// Routes returns a copy of the table in registration order.
func (r *Registry) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

func upsert(routes []Route, rt Route) []Route {
	for i, existing := range routes {
		if existing.Pattern == rt.Pattern {
			routes[i] = rt
			return routes
		}
	}
	return append(routes, rt)
}

// segment is one compiled pattern segment: a literal or a {param} binding.
type segment struct {
	literal string
	param   string
}

type compiledRoute struct {
	route    Route
	scheme   string
	segments []segment
	literals int
	order    int
}

func compile(rt Route, order int) (*compiledRoute, error) {
	scheme, rest, ok := strings.Cut(rt.Pattern, "://")
	if !ok || scheme == "" {
		return nil, fmt.Errorf("route %q: missing scheme", rt.Pattern)
	}
	if rest == "" {
		return nil, fmt.Errorf("route %q: empty path", rt.Pattern)
	}
	c := &compiledRoute{route: rt, scheme: scheme, order: order}
	for _, raw := range strings.Split(rest, "/") {
		if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
			name := raw[1 : len(raw)-1]
			if name == "" {
				return nil, fmt.Errorf("route %q: empty placeholder", rt.Pattern)
			}
			c.segments = append(c.segments, segment{param: name})
			continue
		}
		if strings.ContainsAny(raw, "{}") {
			return nil, fmt.Errorf("route %q: malformed segment %q", rt.Pattern, raw)
		}
		c.segments = append(c.segments, segment{literal: raw})
		c.literals++
	}
	return c, nil
}

// match binds URI path segments against the pattern, returning the extracted
// path parameters, or ok=false.
func (c *compiledRoute) match(scheme string, segments []string) (map[string]string, bool) {
	if scheme != c.scheme || len(segments) != len(c.segments) {
		return nil, false
	}
	params := make(map[string]string)
	for i, s := range c.segments {
		if s.param != "" {
			params[s.param] = segments[i]
			continue
		}
		if s.literal != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func convert(raw string, t ParamType) (core.Value, error) {
	switch t {
	case TypeString:
		return core.StringValue(raw), nil
	case TypeInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return core.Value{}, err
		}
		return core.IntValue(i), nil
	case TypeInt64:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return core.Value{}, err
		}
		return core.Int64Value(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return core.Value{}, err
		}
		return core.FloatValue(f), nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return core.Value{}, err
		}
		return core.BoolValue(b), nil
	}
	return core.Value{}, fmt.Errorf("unknown param type %d", t)
}
