package presentation

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/zjrosen/govkit/internal/domain/check"
)

var (
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	BannerColor        = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#3498DB"}
)

// Styles holds the styles bound to one output renderer.
type Styles struct {
	Banner  lipgloss.Style
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Warn    lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
	noColor bool
}

// NewStyles builds styles for r. With noColor the renderer is forced to the
// ASCII profile so no escape sequences are emitted.
func NewStyles(r *lipgloss.Renderer, noColor bool) Styles {
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Banner:  r.NewStyle().Bold(true).Foreground(BannerColor),
		Pass:    r.NewStyle().Bold(true).Foreground(StatusSuccessColor),
		Fail:    r.NewStyle().Bold(true).Foreground(StatusErrorColor),
		Warn:    r.NewStyle().Bold(true).Foreground(StatusWarningColor),
		Muted:   r.NewStyle().Foreground(TextMutedColor),
		Header:  r.NewStyle().Bold(true).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		Border:  r.NewStyle().Foreground(TextMutedColor),
		noColor: noColor,
	}
}

// ForStatus returns the style used for a check status label.
func (s Styles) ForStatus(status check.Status) lipgloss.Style {
	switch status {
	case check.StatusPass:
		return s.Pass
	case check.StatusFail:
		return s.Fail
	default:
		return s.Warn
	}
}
