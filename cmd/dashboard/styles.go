package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/shopspring/decimal"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// SummaryStyle for the performance line above each table.
	SummaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// FormatNumber renders v with a fixed number of decimal places.
func FormatNumber(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// FormatPercent renders v as a percentage with an arrow for its sign.
func FormatPercent(v float64) string {
	s := FormatNumber(v, 2) + "%"

	switch {
	case v > 0:
		return s + " ▲"
	case v < 0:
		return s + " ▼"
	}

	return s
}

// FormatPosition renders a position as the label shown in the price table.
func FormatPosition(p types.Position) string {
	if p == types.PositionLong {
		return "● long"
	}

	return "○ flat"
}
