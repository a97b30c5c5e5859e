// internal/ui/styles.go

package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Kolory klas komunikatów
	successColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF5F5F"}
	warningColor = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD75F"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#005FD7", Dark: "#5FAFFF"}
	attemptColor = lipgloss.AdaptiveColor{Light: "#00A8A8", Dark: "#5FD7D7"}
	subtle       = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight    = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	// Style klas komunikatów
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	InfoStyle = lipgloss.NewStyle().
			Foreground(infoColor)

	AttemptStyle = lipgloss.NewStyle().
			Foreground(attemptColor)

	// Tytuł listy urządzeń
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			MarginLeft(2)

	// Kontener pickera
	WindowStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(1, 2)
)
