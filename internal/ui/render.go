package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/input"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...)
}

// DevicesTable renders scanned device descriptors.
func DevicesTable(devices []input.Info) string {
	t := newTable("ID", "TYPE", "NAME", "PRODUCT")
	for _, d := range devices {
		t.Row(d.ID, d.Type.String(), d.Name, d.Product)
	}
	return t.String()
}

// StatusTable renders per-device liveness.
func StatusTable(entries []input.StatusEntry) string {
	t := newTable("ID", "STATUS")
	for _, e := range entries {
		t.Row(e.ID, FormatStatus(e.Status))
	}
	return t.String()
}

// FormatStatus colors a device status by its kind.
func FormatStatus(s input.Status) string {
	switch s.Kind {
	case input.StatusActive:
		return SuccessStyle.Render(IconActive + " " + s.String())
	case input.StatusIdle:
		return SubtleStyle.Render(IconIdle + " " + s.String())
	case input.StatusDisconnected:
		return ErrorStyle.Render(IconError + " " + s.String())
	default:
		return WarningStyle.Render(s.String())
	}
}

// MonitorsTable renders the current topology.
func MonitorsTable(monitors []display.Monitor) string {
	t := newTable("NAME", "RESOLUTION", "POSITION", "SCALE", "PRIMARY")
	for _, m := range monitors {
		primary := ""
		if m.Primary {
			primary = IconSuccess
		}
		t.Row(
			m.Name,
			fmt.Sprintf("%dx%d", m.Width, m.Height),
			fmt.Sprintf("%d,%d", m.X, m.Y),
			fmt.Sprintf("%.2f", m.Scale),
			primary,
		)
	}
	return t.String()
}
