package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	var sb strings.Builder

	title := "slabwatch"
	state := statusRunStyle.Render("running")
	if !m.running {
		state = statusPauseStyle.Render("paused")
	}
	sb.WriteString(headerStyle.Render(title) + " " + state + "\n\n")

	sb.WriteString(m.renderTable())
	sb.WriteString("\n")

	live := int64(m.allocs) - int64(m.frees)
	counters := m.pr.Sprintf("allocs %d   frees %d   live %d   workers %d",
		m.allocs, m.frees, live, m.workers)
	sb.WriteString(counterStyle.Render(counters) + "\n")

	sb.WriteString(statusStyle.Render("space: pause/resume   q: quit"))
	return sb.String()
}

func (m model) renderTable() string {
	header := m.pr.Sprintf("%8s %8s %8s %12s %12s %14s %14s",
		"size", "stride", "blocks", "held", "used", "bytes held", "bytes used")
	rows := []string{tableHeaderStyle.Render(header)}

	for i, c := range m.stats.Classes {
		row := m.pr.Sprintf("%8d %8d %8d %12d %12d %14d %14d",
			c.Size, c.Stride, c.Blocks, c.ChunksHeld, c.ChunksUsed, c.BytesHeld, c.BytesUsed)
		style := tableRowStyle
		if i%2 == 1 {
			style = tableRowAltStyle
		}
		rows = append(rows, style.Render(row))
	}
	if len(m.stats.Classes) == 0 {
		rows = append(rows, tableRowStyle.Render("  (no size classes yet)"))
	}

	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
