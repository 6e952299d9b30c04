package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/JRI98/maxogram/client/controller"
	"github.com/JRI98/maxogram/internal/nav"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const noticeTimeout = 5 * time.Second

// Dispatcher is the part of the controller the UI drives.
type Dispatcher interface {
	State() nav.State
	Dispatch(trigger nav.Trigger) []controller.Command
}

type triggerMsg struct {
	trigger nav.Trigger
}

type noticeExpiredMsg struct {
	notice *nav.Notice
}

// screen is the UI of one nav screen. A new one is built every time the
// screen is entered, which discards any form it held.
type screen interface {
	init() tea.Cmd
	update(msg tea.Msg, state nav.State) (tea.Cmd, []nav.Trigger)
	sync(state nav.State)
	resize(width int, height int)
	view(state nav.State) string
	keys(state nav.State) bindings
	// capturing reports whether the screen wants esc for itself.
	capturing() bool
}

type Model struct {
	dispatcher Dispatcher
	logger     *slog.Logger

	screen screen
	shown  nav.Screen
	help   help.Model

	width  int
	height int
}

func New(dispatcher Dispatcher, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}

	state := dispatcher.State()

	return &Model{
		dispatcher: dispatcher,
		logger:     logger,
		screen:     newScreen(state, logger),
		shown:      state.Screen(),
		help:       help.New(),
		width:      80,
		height:     24,
	}
}

func newScreen(state nav.State, logger *slog.Logger) screen {
	switch state.Screen() {
	case nav.ScreenRegister:
		return newRegisterScreen()
	case nav.ScreenChats:
		return newChatsScreen()
	case nav.ScreenChat:
		return newChatScreen(state)
	case nav.ScreenSearch:
		return newSearchScreen()
	case nav.ScreenProfile:
		return newProfileScreen()
	case nav.ScreenSettings:
		return newSettingsScreen(state, logger)
	default:
		return newAuthScreen()
	}
}

func (m *Model) Init() tea.Cmd {
	return m.screen.init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.screen.resize(m.width, m.height)
		return m, nil

	case triggerMsg:
		return m, m.dispatch(msg.trigger)

	case noticeExpiredMsg:
		if m.dispatcher.State().Notice == msg.notice {
			return m, m.dispatch(nav.DismissNotice{})
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, globalKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, globalKeys.Back) && !m.screen.capturing():
			return m, m.dispatch(nav.Back{})
		case key.Matches(msg, globalKeys.Refresh):
			return m, m.dispatch(nav.Refresh{})
		case key.Matches(msg, globalKeys.Dismiss):
			return m, m.dispatch(nav.DismissNotice{})
		}
	}

	cmd, triggers := m.screen.update(msg, m.dispatcher.State())

	cmds := []tea.Cmd{cmd}
	for _, trigger := range triggers {
		cmds = append(cmds, m.dispatch(trigger))
	}

	return m, tea.Batch(cmds...)
}

// dispatch moves the state machine and turns the resulting commands into
// tea commands.
func (m *Model) dispatch(trigger nav.Trigger) tea.Cmd {
	before := m.dispatcher.State()
	commands := m.dispatcher.Dispatch(trigger)
	after := m.dispatcher.State()

	cmds := make([]tea.Cmd, 0, len(commands)+2)
	for _, command := range commands {
		cmds = append(cmds, wrap(command))
	}

	if after.Screen() != m.shown {
		m.screen = newScreen(after, m.logger)
		m.screen.resize(m.width, m.height)
		m.shown = after.Screen()
		cmds = append(cmds, m.screen.init())
	} else {
		m.screen.sync(after)
	}

	if after.Notice != nil && after.Notice != before.Notice {
		notice := after.Notice
		cmds = append(cmds, tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
			return noticeExpiredMsg{notice: notice}
		}))
	}

	return tea.Batch(cmds...)
}

func wrap(command controller.Command) tea.Cmd {
	return func() tea.Msg {
		trigger := command()
		if trigger == nil {
			return nil
		}
		return triggerMsg{trigger: trigger}
	}
}

func (m *Model) View() string {
	state := m.dispatcher.State()

	var b strings.Builder

	b.WriteString(m.screen.view(state))
	b.WriteString("\n")

	if notice := renderNotice(state.Notice); notice != "" {
		b.WriteString("\n")
		b.WriteString(notice)
		b.WriteString("\n")
	}

	keys := append(m.screen.keys(state), globalKeys.Refresh, globalKeys.Quit)
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))

	return b.String()
}
