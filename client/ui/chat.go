package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/nav"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const draftHeight = 3

type chatScreen struct {
	viewport viewport.Model
	draft    textarea.Model
	record   key.Binding

	messages []api.Message
	selfID   int64
	width    int
	now      func() time.Time
}

func newChatScreen(state nav.State) *chatScreen {
	draft := textarea.New()
	draft.Placeholder = "Message…"
	draft.Prompt = "┃ "
	draft.CharLimit = 4096
	draft.ShowLineNumbers = false
	draft.SetHeight(draftHeight)
	draft.FocusedStyle.CursorLine = lipgloss.NewStyle()
	draft.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	draft.Focus()

	s := &chatScreen{
		viewport: viewport.New(80, 12),
		draft:    draft,
		record:   recordKey,
		width:    80,
		now:      time.Now,
	}
	if state.User != nil {
		s.selfID = state.User.ID
	}
	s.sync(state)

	return s
}

func (s *chatScreen) init() tea.Cmd {
	return textarea.Blink
}

func (s *chatScreen) update(msg tea.Msg, state nav.State) (tea.Cmd, []nav.Trigger) {
	view, ok := state.View.(nav.ChatView)
	if !ok {
		return nil, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, s.record):
			if view.Recording.Active {
				return nil, []nav.Trigger{nav.StopRecording{}}
			}
			return nil, []nav.Trigger{nav.StartRecording{}}
		case key.Matches(msg, recordKey):
			// Disabled while the microphone is opening or the audio is being sent.
			return nil, nil
		case key.Matches(msg, sendKey):
			return nil, []nav.Trigger{nav.SendText{}}
		case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			return cmd, nil
		}
	}

	if _, ok := msg.(tea.MouseMsg); ok {
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return cmd, nil
	}

	previous := s.draft.Value()

	var cmd tea.Cmd
	s.draft, cmd = s.draft.Update(msg)

	if s.draft.Value() != previous {
		return cmd, []nav.Trigger{nav.EditDraft{Text: s.draft.Value()}}
	}
	return cmd, nil
}

// sync follows the state: new messages, a draft cleared after a send and
// the availability of the record key.
func (s *chatScreen) sync(state nav.State) {
	view, ok := state.View.(nav.ChatView)
	if !ok {
		return
	}

	if view.Draft == "" && s.draft.Value() != "" {
		s.draft.Reset()
	}

	recording := view.Recording
	s.record.SetEnabled(!recording.Pending && !recording.Finalizing)
	if recording.Active {
		s.record.SetHelp("ctrl+v", "stop & send")
	} else {
		s.record.SetHelp("ctrl+v", "record")
	}

	if !sameMessages(s.messages, view.Messages) {
		s.messages = view.Messages
		s.render()
		s.viewport.GotoBottom()
	}
}

func sameMessages(a []api.Message, b []api.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func (s *chatScreen) render() {
	if len(s.messages) == 0 {
		s.viewport.SetContent(dimStyle.Render("No messages yet. Say hi!"))
		return
	}

	now := s.now()
	wrapWidth := max(10, s.width-4)

	var content strings.Builder
	for _, message := range s.messages {
		content.WriteString(renderMessage(message, s.selfID, now, wrapWidth))
		content.WriteString("\n")
	}

	s.viewport.SetContent(content.String())
}

func renderMessage(message api.Message, selfID int64, now time.Time, width int) string {
	sender := otherStyle.Render(message.SenderName)
	if message.SenderID == selfID {
		sender = meStyle.Render("You")
	}

	header := fmt.Sprintf("%s %s", sender, dimStyle.Render(formatTime(message.CreatedAt, now)))
	if message.SenderID == selfID && message.ReadAt != nil {
		header += dimStyle.Render(" ✓✓")
	}

	var body string
	switch {
	case message.IsVoice:
		duration := 0
		if message.VoiceDuration != nil {
			duration = *message.VoiceDuration
		}
		body = fmt.Sprintf("🎤 Voice message (%s)", formatDuration(duration))
	case message.MessageText != nil:
		body = wordwrap.String(*message.MessageText, width)
	}

	return header + "\n" + body + "\n"
}

func (s *chatScreen) resize(width int, height int) {
	s.width = width
	s.viewport.Width = width
	s.viewport.Height = max(3, height-draftHeight-8)
	s.draft.SetWidth(max(10, width))
	s.render()
}

func (s *chatScreen) capturing() bool {
	return false
}

func (s *chatScreen) view(state nav.State) string {
	partner, ok := state.Partner()
	if !ok || state.User == nil {
		return ""
	}

	var b strings.Builder

	header := titleStyle.Render(partner.Username)
	if partner.Online {
		header += " " + onlineStyle.Render("online")
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(s.viewport.View())
	b.WriteString("\n\n")

	view := state.View.(nav.ChatView)
	switch recording := view.Recording; {
	case recording.Pending:
		b.WriteString(dimStyle.Render("Opening microphone…"))
		b.WriteString("\n")
	case recording.Active:
		b.WriteString(recordingStyle.Render("● REC " + formatDuration(recording.Elapsed)))
		b.WriteString("\n")
	case recording.Finalizing:
		b.WriteString(dimStyle.Render("Sending voice message…"))
		b.WriteString("\n")
	}

	b.WriteString(s.draft.View())
	if view.Sending {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Sending…"))
	}

	return b.String()
}

func (s *chatScreen) keys(nav.State) bindings {
	return bindings{sendKey, s.record, globalKeys.Back}
}
