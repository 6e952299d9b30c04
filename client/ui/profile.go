package ui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/JRI98/maxogram/internal/media"
	"github.com/JRI98/maxogram/internal/nav"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type profileScreen struct{}

func newProfileScreen() *profileScreen {
	return &profileScreen{}
}

func (s *profileScreen) init() tea.Cmd {
	return nil
}

func (s *profileScreen) update(msg tea.Msg, state nav.State) (tea.Cmd, []nav.Trigger) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil
	}

	switch {
	case key.Matches(keyMsg, nextTabKey):
		return nil, []nav.Trigger{nav.Navigate{To: nextTab(nav.ScreenProfile)}}
	case key.Matches(keyMsg, settingsKey):
		return nil, []nav.Trigger{nav.OpenSettings{}}
	case key.Matches(keyMsg, logoutKey):
		return nil, []nav.Trigger{nav.Logout{}}
	}

	return nil, nil
}

func (s *profileScreen) sync(nav.State) {}

func (s *profileScreen) resize(int, int) {}

func (s *profileScreen) capturing() bool {
	return false
}

func (s *profileScreen) view(state nav.State) string {
	var b strings.Builder

	b.WriteString(renderTabs(nav.ScreenProfile))
	b.WriteString("\n\n")

	user := state.User
	if user == nil {
		return b.String()
	}

	b.WriteString(titleStyle.Render(user.AvatarInitials))
	b.WriteString(" ")
	b.WriteString(selectedStyle.Render(user.Username))
	b.WriteString(" ")
	b.WriteString(presence(user.Online))
	b.WriteString("\n\n")

	field := func(label string, value *string) {
		text := dimStyle.Render("not set")
		if value != nil && *value != "" {
			text = *value
		}
		fmt.Fprintf(&b, "%-12s %s\n", label, text)
	}

	field("Email", user.Email)
	field("Phone", user.Phone)
	field("Birth date", user.BirthDate)

	avatar := "not set"
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		avatar = "uploaded"
	}
	field("Avatar", &avatar)

	if user.UsernameLastChanged != nil {
		changed := user.UsernameLastChanged.Local().Format("02.01.2006")
		field("Renamed", &changed)
	}

	return b.String()
}

func (s *profileScreen) keys(nav.State) bindings {
	return bindings{settingsKey, logoutKey, nextTabKey}
}

const (
	settingsUsername = iota
	settingsBirthDate
)

type avatarLoadedMsg struct {
	path string
	data []byte
	err  error
}

type settingsScreen struct {
	form   form
	picker filepicker.Model
	logger *slog.Logger

	picking    bool
	avatarPath string
	avatar     []byte
	avatarErr  error
}

func newSettingsScreen(state nav.State, logger *slog.Logger) *settingsScreen {
	username := newInput("Username", 20)
	birthDate := newInput("Birth date (YYYY-MM-DD)", 10)

	if state.User != nil {
		username.SetValue(state.User.Username)
		if state.User.BirthDate != nil {
			birthDate.SetValue(*state.User.BirthDate)
		}
	}

	picker := filepicker.New()
	picker.AllowedTypes = []string{".png", ".jpg", ".jpeg"}
	picker.CurrentDirectory, _ = os.UserHomeDir()
	picker.Height = 10

	return &settingsScreen{
		form:   newForm(username, birthDate),
		picker: picker,
		logger: logger,
	}
}

func (s *settingsScreen) init() tea.Cmd {
	return tea.Batch(textinput.Blink, s.picker.Init())
}

func (s *settingsScreen) update(msg tea.Msg, state nav.State) (tea.Cmd, []nav.Trigger) {
	if msg, ok := msg.(avatarLoadedMsg); ok {
		s.avatarPath = msg.path
		s.avatar = msg.data
		s.avatarErr = msg.err
		return nil, nil
	}

	if s.picking {
		return s.updatePicker(msg), nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, avatarKey):
			s.picking = true
			return nil, nil
		case key.Matches(msg, saveKey):
			return nil, []nav.Trigger{nav.SaveSettings{
				Username:  s.form.value(settingsUsername),
				BirthDate: s.form.value(settingsBirthDate),
				Avatar:    s.avatar,
			}}
		}
	}

	// The picker keeps loading its directory in the background.
	if _, ok := msg.(tea.KeyMsg); !ok {
		var pickerCmd tea.Cmd
		s.picker, pickerCmd = s.picker.Update(msg)
		return tea.Batch(pickerCmd, s.form.update(msg)), nil
	}

	return s.form.update(msg), nil
}

func (s *settingsScreen) updatePicker(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, globalKeys.Back) {
		s.picking = false
		return nil
	}

	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)

	if didSelect, path := s.picker.DidSelectFile(msg); didSelect {
		s.picking = false
		return tea.Batch(cmd, s.loadAvatar(path))
	}

	if didSelect, path := s.picker.DidSelectDisabledFile(msg); didSelect {
		s.avatarErr = fmt.Errorf("%s: %w", path, media.ErrAvatarType)
	}

	return cmd
}

func (s *settingsScreen) loadAvatar(path string) tea.Cmd {
	logger := s.logger
	return func() tea.Msg {
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("failed to stat avatar", slog.String("path", path), slog.Any("error", err))
			return avatarLoadedMsg{path: path, err: fmt.Errorf("failed to read avatar: %w", err)}
		}
		if info.Size() > media.MaxAvatarSize {
			return avatarLoadedMsg{path: path, err: media.ErrAvatarTooLarge}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read avatar", slog.String("path", path), slog.Any("error", err))
			return avatarLoadedMsg{path: path, err: fmt.Errorf("failed to read avatar: %w", err)}
		}

		return avatarLoadedMsg{path: path, data: data}
	}
}

func (s *settingsScreen) sync(nav.State) {}

func (s *settingsScreen) resize(width int, height int) {
	s.form.resize(width)
	s.picker.Height = max(3, height-10)
}

func (s *settingsScreen) capturing() bool {
	return s.picking
}

func (s *settingsScreen) view(state nav.State) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	if s.picking {
		b.WriteString("Pick an avatar (PNG or JPEG, up to 5 MB)\n\n")
		b.WriteString(s.picker.View())
		return b.String()
	}

	b.WriteString(s.form.view())

	switch {
	case s.avatarErr != nil:
		b.WriteString(noticeStyles[nav.NoticeValidation].Render(s.avatarErr.Error()))
	case s.avatarPath != "":
		b.WriteString("Avatar: " + s.avatarPath)
	default:
		b.WriteString(dimStyle.Render("Avatar unchanged"))
	}
	b.WriteString("\n")

	if user := state.User; user != nil && user.UsernameLastChanged != nil {
		next := user.UsernameLastChanged.Add(3 * 24 * time.Hour)
		if time.Now().Before(next) {
			b.WriteString(dimStyle.Render("Username can be changed again on " + next.Local().Format("02.01 15:04")))
			b.WriteString("\n")
		}
	}

	if view, ok := state.View.(nav.SettingsView); ok && view.Submitting {
		b.WriteString(dimStyle.Render("Saving…"))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *settingsScreen) keys(nav.State) bindings {
	if s.picking {
		return bindings{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return bindings{saveKey, nextFieldKey, avatarKey, globalKeys.Back}
}
