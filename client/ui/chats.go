package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/nav"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var tabs = []nav.Screen{nav.ScreenChats, nav.ScreenSearch, nav.ScreenProfile}

var tabTitles = map[nav.Screen]string{
	nav.ScreenChats:   "Chats",
	nav.ScreenSearch:  "Search",
	nav.ScreenProfile: "Profile",
}

func renderTabs(active nav.Screen) string {
	rendered := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		style := tabStyle
		if tab == active {
			style = activeTabStyle
		}
		rendered = append(rendered, style.Render(tabTitles[tab]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func nextTab(current nav.Screen) nav.Screen {
	for i, tab := range tabs {
		if tab == current {
			return tabs[(i+1)%len(tabs)]
		}
	}
	return nav.ScreenChats
}

// cursor tracks the highlighted row of a list whose length changes under it.
type cursor struct {
	index int
}

func (c *cursor) move(delta int, length int) {
	if length == 0 {
		c.index = 0
		return
	}
	c.index = min(max(c.index+delta, 0), length-1)
}

func (c *cursor) clamp(length int) {
	c.move(0, length)
}

type chatsScreen struct {
	cursor cursor
	width  int
	now    func() time.Time
}

func newChatsScreen() *chatsScreen {
	return &chatsScreen{width: 80, now: time.Now}
}

func (s *chatsScreen) init() tea.Cmd {
	return nil
}

func (s *chatsScreen) update(msg tea.Msg, state nav.State) (tea.Cmd, []nav.Trigger) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil
	}

	switch {
	case key.Matches(keyMsg, upKey):
		s.cursor.move(-1, len(state.Chats))
	case key.Matches(keyMsg, downKey):
		s.cursor.move(1, len(state.Chats))
	case key.Matches(keyMsg, nextTabKey):
		return nil, []nav.Trigger{nav.Navigate{To: nextTab(nav.ScreenChats)}}
	case key.Matches(keyMsg, openKey):
		if len(state.Chats) == 0 {
			return nil, nil
		}
		return nil, []nav.Trigger{nav.SelectChat{PartnerID: state.Chats[s.cursor.index].ID}}
	}

	return nil, nil
}

func (s *chatsScreen) sync(state nav.State) {
	s.cursor.clamp(len(state.Chats))
}

func (s *chatsScreen) resize(width int, height int) {
	s.width = width
}

func (s *chatsScreen) capturing() bool {
	return false
}

func (s *chatsScreen) view(state nav.State) string {
	var b strings.Builder

	b.WriteString(renderTabs(nav.ScreenChats))
	b.WriteString("\n\n")

	if len(state.Chats) == 0 {
		b.WriteString(dimStyle.Render("No conversations yet. Find someone in Search."))
		b.WriteString("\n")
		return b.String()
	}

	now := s.now()
	for i, chat := range state.Chats {
		b.WriteString(s.renderChat(chat, i == s.cursor.index, now))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *chatsScreen) renderChat(chat api.ChatSummary, selected bool, now time.Time) string {
	name := chat.Username
	if selected {
		name = selectedStyle.Render("> " + name)
	} else {
		name = "  " + name
	}

	line := fmt.Sprintf("%s %s [%s]", name, presence(chat.Online), chat.AvatarInitials)
	if chat.UnreadCount > 0 {
		line += " " + unreadStyle.Render(fmt.Sprint(chat.UnreadCount))
	}

	preview := "No messages"
	switch {
	case chat.LastMessageIsVoice:
		preview = "🎤 Voice message"
	case chat.LastMessage != nil:
		preview = *chat.LastMessage
	}
	preview = strings.ReplaceAll(preview, "\n", " ")
	if limit := max(10, s.width-16); len([]rune(preview)) > limit {
		preview = string([]rune(preview)[:limit-1]) + "…"
	}

	if !chat.LastMessageTime.IsZero() {
		preview = formatTime(chat.LastMessageTime, now) + "  " + preview
	}

	return line + "\n    " + dimStyle.Render(preview)
}

func (s *chatsScreen) keys(nav.State) bindings {
	return bindings{upKey, openKey, nextTabKey}
}

type searchScreen struct {
	query  textinput.Model
	cursor cursor
}

func newSearchScreen() *searchScreen {
	query := newInput("Search users", 20)
	query.Prompt = "🔍 "
	query.Focus()

	return &searchScreen{query: query}
}

func (s *searchScreen) init() tea.Cmd {
	return textinput.Blink
}

func (s *searchScreen) update(msg tea.Msg, state nav.State) (tea.Cmd, []nav.Trigger) {
	results := state.SearchResults()

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, upKey):
			s.cursor.move(-1, len(results))
			return nil, nil
		case key.Matches(msg, downKey):
			s.cursor.move(1, len(results))
			return nil, nil
		case key.Matches(msg, nextTabKey):
			return nil, []nav.Trigger{nav.Navigate{To: nextTab(nav.ScreenSearch)}}
		case key.Matches(msg, openKey):
			if len(results) == 0 {
				return nil, nil
			}
			return nil, []nav.Trigger{nav.SelectResult{UserID: results[s.cursor.index].ID}}
		}
	}

	previous := s.query.Value()

	var cmd tea.Cmd
	s.query, cmd = s.query.Update(msg)

	if s.query.Value() != previous {
		return cmd, []nav.Trigger{nav.EditQuery{Query: s.query.Value()}}
	}
	return cmd, nil
}

func (s *searchScreen) sync(state nav.State) {
	s.cursor.clamp(len(state.SearchResults()))
}

func (s *searchScreen) resize(width int, height int) {
	s.query.Width = max(10, min(40, width-6))
}

func (s *searchScreen) capturing() bool {
	return false
}

func (s *searchScreen) view(state nav.State) string {
	var b strings.Builder

	b.WriteString(renderTabs(nav.ScreenSearch))
	b.WriteString("\n\n")
	b.WriteString(s.query.View())
	b.WriteString("\n\n")

	results := state.SearchResults()
	switch {
	case s.query.Value() == "":
		b.WriteString(dimStyle.Render("Type a username to search."))
		b.WriteString("\n")
	case len(results) == 0:
		b.WriteString(dimStyle.Render("No users found."))
		b.WriteString("\n")
	}

	for i, user := range results {
		line := fmt.Sprintf("%s %s [%s]", user.Username, presence(user.Online), user.AvatarInitials)
		if i == s.cursor.index {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (s *searchScreen) keys(nav.State) bindings {
	return bindings{upKey, openKey, nextTabKey}
}
