package ui

import (
	"fmt"
	"time"

	"github.com/JRI98/maxogram/internal/nav"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("240"))
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("#5A56E0")).Underline(true)

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A56E0")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	onlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	unreadStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#E05656")).
			Padding(0, 1)
	recordingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	meStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF88")).Bold(true)
	otherStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4455FF")).Bold(true)

	noticeStyles = map[nav.NoticeKind]lipgloss.Style{
		nav.NoticeInfo:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		nav.NoticeValidation: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		nav.NoticeService:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		nav.NoticeTransport:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Italic(true),
	}
)

// formatTime renders t as a clock time when it falls on the same day as now
// and with the date otherwise.
func formatTime(t time.Time, now time.Time) string {
	t = t.In(now.Location())

	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return t.Format("15:04")
	}

	return t.Format("02.01 15:04")
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func renderNotice(notice *nav.Notice) string {
	if notice == nil {
		return ""
	}
	return noticeStyles[notice.Kind].Render(notice.Text)
}

func presence(online bool) string {
	if online {
		return onlineStyle.Render("●")
	}
	return dimStyle.Render("○")
}
