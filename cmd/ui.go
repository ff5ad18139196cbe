package cmd

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitdelayed/internal/domain"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"})
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"})
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"})
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"})
)

const (
	iconPass = "✓"
	iconFail = "✗"

	timeLayout = "2006-01-02 15:04:05"
)

func statusStyle(s domain.ExecutionStatus) lipgloss.Style {
	switch s {
	case domain.StatusSuccess:
		return passStyle
	case domain.StatusFailure:
		return failStyle
	case domain.StatusCancelled:
		return warnStyle
	default:
		return accentStyle
	}
}

func repoName(path string) string {
	if path == "" {
		return "unknown"
	}
	return filepath.Base(path)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
