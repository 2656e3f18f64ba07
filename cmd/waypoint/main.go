package main

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/waypoint/core"
	"github.com/jask/waypoint/core/route"
	"github.com/jask/waypoint/internal/config"
	"github.com/jask/waypoint/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	resolver, err := route.NewResolver(buildRegistry(cfg))
	if err != nil {
		log.Fatalf("routes: %v", err)
	}

	root, tabKey := buildTree(cfg)
	nav := core.NewNavigator(root, resolver)

	if link := cfg.DeepLink.StartLink; link != "" {
		if !nav.ResolveDeepLink(link) {
			log.Fatalf("start link %q did not resolve", link)
		}
	}

	names := make([]string, len(cfg.Tabs))
	for i, t := range cfg.Tabs {
		names[i] = t.Name
	}

	app := tui.NewApp(nav, tabKey, names, demoLinks(cfg), cfg.IsExpanded())
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}
}

// buildTree assembles the demo tree: a root stack holding one tab node with
// a stack lane per configured tab. The last lane hosts a pane layout so
// adaptive panes are exercised; the rest are plain screen stacks.
func buildTree(cfg config.Config) (core.NavNode, core.Key) {
	mode := core.LayoutCompact
	if cfg.IsExpanded() {
		mode = core.LayoutExpanded
	}

	lanes := make([]*core.StackNode, len(cfg.Tabs))
	for i, t := range cfg.Tabs {
		home := core.NewScreen(core.RandomKey(), core.NewDestination(t.Home))
		if i == len(cfg.Tabs)-1 && len(cfg.Tabs) > 1 {
			pane := core.NewPane(core.RandomKey(), mode, 0,
				core.PaneChild{
					Role:       "primary",
					Visibility: core.VisibleWhenExpanded,
					Stack:      core.NewStack(core.RandomKey(), home),
				},
				core.PaneChild{
					Role:       "supporting",
					Visibility: core.VisibleWhenExpanded,
					Stack:      core.NewStack(core.RandomKey()),
				},
			)
			lanes[i] = core.NewStack(core.RandomKey(), pane)
			continue
		}
		lanes[i] = core.NewStack(core.RandomKey(), home)
	}

	tabKey := core.RandomKey()
	tab := core.NewTab(tabKey, 0, lanes...)
	return core.NewStack(core.RandomKey(), tab), tabKey
}

func buildRegistry(cfg config.Config) *route.Registry {
	scheme := cfg.DeepLink.Scheme
	routes := make([]route.Route, 0, len(cfg.Tabs)+3)
	for i, t := range cfg.Tabs {
		routes = append(routes, route.Route{
			Pattern: fmt.Sprintf("%s://%s", scheme, t.Home),
			Tag:     t.Home,
			Anchor:  route.TabLane(i),
		})
	}
	routes = append(routes,
		route.Route{
			Pattern: scheme + "://detail/{id}",
			Tag:     "detail",
			Params:  []route.Param{{Name: "id", Type: route.TypeInt, Required: true}},
			Anchor:  route.ActiveStack(),
		},
		route.Route{
			Pattern: scheme + "://search/results",
			Tag:     "results",
			Params: []route.Param{
				{Name: "query", Type: route.TypeString, Required: true},
				{Name: "page", Type: route.TypeInt, Default: core.IntValue(1)},
				{Name: "sortAsc", Type: route.TypeBool, Default: core.BoolValue(false)},
			},
			Anchor: route.ActiveStack(),
		},
		route.Route{
			Pattern: scheme + "://inspector",
			Tag:     "inspector",
			Anchor:  route.Pane("supporting"),
		},
	)
	return route.NewRegistry(routes...)
}

func demoLinks(cfg config.Config) []string {
	scheme := cfg.DeepLink.Scheme
	links := []string{
		scheme + "://detail/42",
		scheme + "://search/results?query=kotlin&page=2&sortAsc=true",
		scheme + "://totally/unknown/path",
	}
	if len(cfg.Tabs) > 1 {
		links = append(links, fmt.Sprintf("%s://%s", scheme, cfg.Tabs[1].Home))
	}
	return links
}
