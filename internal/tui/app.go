package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/waypoint/core"
)

// App renders the navigator's flattened surfaces and feeds gesture
// lifecycle signals back, playing the rendering-collaborator role. It never
// mutates trees itself; every intent goes through the navigator.
type App struct {
	nav      *core.Navigator
	tabKey   core.Key
	tabNames []string
	links    []string

	width    int
	height   int
	status   string
	detailID int
	linkIdx  int
	expanded bool

	commits <-chan core.NavNode
	cancel  func()
	keys    keyMap
}

type keyMap struct {
	Quit     key.Binding
	Push     key.Binding
	Pop      key.Binding
	Replace  key.Binding
	DeepLink key.Binding
	NextTab  key.Binding
	Pane     key.Binding
	Layout   key.Binding
	Gesture  key.Binding
	Less     key.Binding
	More     key.Binding
	Commit   key.Binding
	Cancel   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Push:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "push detail")),
		Pop:      key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "pop")),
		Replace:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "replace top")),
		DeepLink: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "deep link")),
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Pane:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inspector pane")),
		Layout:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "layout mode")),
		Gesture:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "back gesture")),
		Less:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "gesture -")),
		More:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "gesture +")),
		Commit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "commit gesture")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel gesture")),
	}
}

// NewApp wires the demo UI to a navigator. tabKey addresses the root tab
// node; links are deep links cycled by the deep-link key.
func NewApp(nav *core.Navigator, tabKey core.Key, tabNames []string, links []string, expanded bool) *App {
	commits, cancel := nav.Observe()
	// Drain the replayed current value; the UI reads frames on demand.
	<-commits
	return &App{
		nav:      nav,
		tabKey:   tabKey,
		tabNames: tabNames,
		links:    links,
		expanded: expanded,
		commits:  commits,
		cancel:   cancel,
		keys:     defaultKeyMap(),
		status:   "Ready",
		width:    100,
		height:   32,
	}
}

type commitMsg struct{ root core.NavNode }

func listenForCommits(ch <-chan core.NavNode) tea.Cmd {
	return func() tea.Msg {
		root, ok := <-ch
		if !ok {
			return nil
		}
		return commitMsg{root: root}
	}
}

func (a *App) Init() tea.Cmd {
	return listenForCommits(a.commits)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case commitMsg:
		return a, listenForCommits(a.commits)
	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.nav.Phase() == core.PhaseProposed {
		return a.handleGestureKey(msg)
	}
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.cancel()
		return a, tea.Quit
	case key.Matches(msg, a.keys.Push):
		a.detailID++
		dest := core.NewDestination("detail", core.Arg{Name: "id", Value: core.IntValue(a.detailID)})
		a.report("push", a.nav.Push(dest))
	case key.Matches(msg, a.keys.Pop):
		popped, err := a.nav.Pop()
		if err != nil {
			a.setError(err)
		} else if !popped {
			a.status = "Nothing left to pop"
		} else {
			a.status = "Popped"
		}
	case key.Matches(msg, a.keys.Replace):
		a.detailID++
		dest := core.NewDestination("detail", core.Arg{Name: "id", Value: core.IntValue(a.detailID)})
		a.report("replace", a.nav.Replace(dest))
	case key.Matches(msg, a.keys.DeepLink):
		if len(a.links) == 0 {
			a.status = "No deep links configured"
			break
		}
		link := a.links[a.linkIdx%len(a.links)]
		a.linkIdx++
		if a.nav.ResolveDeepLink(link) {
			a.status = "Resolved " + link
		} else {
			a.status = "Failed to resolve " + link
		}
	case key.Matches(msg, a.keys.NextTab):
		a.switchToNextTab()
	case key.Matches(msg, a.keys.Pane):
		dest := core.NewDestination("inspector")
		a.report("pane", a.nav.NavigateToPane("supporting", dest))
	case key.Matches(msg, a.keys.Layout):
		a.expanded = !a.expanded
		mode := core.LayoutCompact
		if a.expanded {
			mode = core.LayoutExpanded
		}
		a.report("layout", a.nav.SetLayoutMode(mode))
	case key.Matches(msg, a.keys.Gesture):
		started, err := a.nav.BeginBackGesture()
		if err != nil {
			a.setError(err)
		} else if !started {
			a.status = "Nothing to go back to"
		} else {
			a.status = "Back gesture: ←/→ drag, enter commit, esc cancel"
		}
	}
	return a, nil
}

func (a *App) handleGestureKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Less):
		a.report("gesture", a.nav.UpdateBackGesture(a.nav.Frame().Progress-0.1))
	case key.Matches(msg, a.keys.More):
		a.report("gesture", a.nav.UpdateBackGesture(a.nav.Frame().Progress+0.1))
	case key.Matches(msg, a.keys.Commit):
		if err := a.nav.CommitBackGesture(); err != nil {
			a.setError(err)
			break
		}
		// The demo settles immediately; a compositor would animate first.
		a.report("settle", a.nav.SettleBackGesture())
		a.status = "Gesture committed"
	case key.Matches(msg, a.keys.Cancel):
		a.report("cancel", a.nav.CancelBackGesture())
		a.status = "Gesture canceled"
	}
	return a, nil
}

func (a *App) switchToNextTab() {
	tab := findTab(a.nav.Root(), a.tabKey)
	if tab == nil {
		a.status = "No tab node"
		return
	}
	next := (tab.ActiveIndex() + 1) % tab.Len()
	if err := a.nav.SwitchTab(a.tabKey, next); err != nil {
		a.setError(err)
		return
	}
	if next < len(a.tabNames) {
		a.status = "Tab: " + a.tabNames[next]
	}
}

func (a *App) report(op string, err error) {
	if err != nil {
		a.status = fmt.Sprintf("%s: %v", op, err)
		return
	}
	a.status = "OK: " + op
}

func (a *App) setError(err error) {
	a.status = err.Error()
}

func findTab(root core.NavNode, tabKey core.Key) *core.TabNode {
	var tab *core.TabNode
	core.Walk(root, func(n core.NavNode) bool {
		if t, ok := n.(*core.TabNode); ok && t.Key() == tabKey {
			tab = t
			return false
		}
		return tab == nil
	})
	return tab
}
