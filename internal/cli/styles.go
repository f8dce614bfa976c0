// Package cli renders bizbot output for the terminal with lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// Palette.
var (
	MpesaGreen = lipgloss.Color("#43B02A")
	MoneyIn    = lipgloss.Color("#4ECDC4")
	MoneyOut   = lipgloss.Color("#FF8C61")
	Caution    = lipgloss.Color("#FFE66D")
	Failure    = lipgloss.Color("#FF6B6B")
	Muted      = lipgloss.Color("#8A8A8A")
	Frame      = lipgloss.Color("#3A3A3A")
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(MpesaGreen).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(MpesaGreen)
	WarningStyle = lipgloss.NewStyle().Foreground(Caution)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Failure)
	InfoStyle    = lipgloss.NewStyle().Foreground(Muted)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// Amounts are tinted by the direction the money moved.
	IncomeStyle  = lipgloss.NewStyle().Foreground(MoneyIn)
	ExpenseStyle = lipgloss.NewStyle().Foreground(MoneyOut)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Frame).
			Padding(1, 2)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(Frame)

	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
	InfoIcon    = "·"
	PhoneIcon   = "📱"
	ChartIcon   = "📊"
)

func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle prefixes title with the phone icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(PhoneIcon + " " + title)
}

// FormatConfidence colors a confidence level: high is green, low amber, very low red.
func FormatConfidence(level model.ConfidenceLevel, text string) string {
	switch level {
	case model.ConfidenceHigh:
		return SuccessStyle.Render(text)
	case model.ConfidenceLow:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

// FormatSigned renders an amount tinted by its direction, with outgoing money shown negative.
func FormatSigned(txn model.Transaction) string {
	switch txn.Type.Direction() {
	case model.DirectionIncome:
		return IncomeStyle.Render(FormatAmount(txn.Amount))
	case model.DirectionExpense:
		return ExpenseStyle.Render(FormatAmount(txn.Amount.Neg()))
	}
	return FormatAmount(txn.Amount)
}

// RenderBox draws content under title inside a rounded frame.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
