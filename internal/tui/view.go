package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/waypoint/core"
)

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	surfaceStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	dimmedStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).Foreground(lipgloss.Color("241"))
	roleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 2)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.viewTabBar())
	b.WriteString("\n\n")

	frame := a.nav.Frame()
	if a.nav.Phase() == core.PhaseIdle {
		b.WriteString(renderSurfaces(frame.Incoming, surfaceStyle))
	} else {
		b.WriteString(a.viewGesture(frame))
	}

	b.WriteString("\n\n")
	b.WriteString(statusStyle.Width(max(a.width, 20)).Render(a.status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("p push · ⌫ pop · r replace · d deep link · tab tabs · i pane · m layout · g gesture · q quit"))
	return b.String()
}

func (a *App) viewTabBar() string {
	tab := findTab(a.nav.Root(), a.tabKey)
	if tab == nil {
		return ""
	}
	cells := make([]string, 0, len(a.tabNames))
	for i, name := range a.tabNames {
		if i == tab.ActiveIndex() {
			cells = append(cells, activeTabStyle.Render(name))
			continue
		}
		cells = append(cells, tabStyle.Render(name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// viewGesture paints the superposition: the outgoing committed view fading
// behind the incoming speculative view, with the drag progress between.
func (a *App) viewGesture(frame core.Frame) string {
	out := renderSurfaces(frame.Outgoing, dimmedStyle)
	in := renderSurfaces(frame.Incoming, surfaceStyle)
	bar := progressBar(frame.Progress, 24)
	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, roleStyle.Render("outgoing"), out),
		"   ",
		lipgloss.JoinVertical(lipgloss.Left, roleStyle.Render("incoming"), in),
	)
	return cols + "\n" + bar
}

func renderSurfaces(surfaces []core.Surface, style lipgloss.Style) string {
	if len(surfaces) == 0 {
		return style.Render("(nothing visible)")
	}
	panels := make([]string, 0, len(surfaces))
	for _, s := range surfaces {
		var header string
		if s.Role != "" {
			header = roleStyle.Render(s.Role) + " "
		}
		body := fmt.Sprintf("%s%s\nz=%d slot=%s", header, s.Destination, s.ZOrder, shortSlot(s.StateSlot))
		panels = append(panels, style.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

func progressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "] " +
		fmt.Sprintf("%3.0f%%", progress*100)
}

func shortSlot(slot string) string {
	if len(slot) > 8 {
		return slot[:8]
	}
	return slot
}
