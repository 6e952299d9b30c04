package ui

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JRI98/maxogram/client/controller"
	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/nav"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDispatcher runs the real state machine but performs no effects.
type stubDispatcher struct {
	state    nav.State
	triggers []nav.Trigger
}

func (d *stubDispatcher) State() nav.State {
	return d.state
}

func (d *stubDispatcher) Dispatch(trigger nav.Trigger) []controller.Command {
	d.triggers = append(d.triggers, trigger)
	d.state, _ = nav.Transition(d.state, trigger)
	return nil
}

func (d *stubDispatcher) last() nav.Trigger {
	if len(d.triggers) == 0 {
		return nil
	}
	return d.triggers[len(d.triggers)-1]
}

func newTestModel(state nav.State) (*Model, *stubDispatcher) {
	dispatcher := &stubDispatcher{state: state}
	return New(dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil))), dispatcher
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, "09:05", formatTime(time.Date(2024, 5, 10, 9, 5, 0, 0, time.UTC), now))
	assert.Equal(t, "09.05 23:59", formatTime(time.Date(2024, 5, 9, 23, 59, 0, 0, time.UTC), now))
	assert.Equal(t, "10.05 09:05", formatTime(time.Date(2023, 5, 10, 9, 5, 0, 0, time.UTC), now))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:07", formatDuration(7))
	assert.Equal(t, "2:05", formatDuration(125))
}

func TestLoginForm(t *testing.T) {
	m, dispatcher := newTestModel(nav.Initial())

	typeText(m, "alice")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "secret")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, nav.SubmitLogin{Username: "alice", Password: "secret"}, dispatcher.last())
	assert.NotContains(t, m.View(), "secret")
}

func TestOpenRegisterBuildsFreshForm(t *testing.T) {
	m, dispatcher := newTestModel(nav.Initial())

	typeText(m, "alice")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	require.Equal(t, nav.ScreenRegister, dispatcher.state.Screen())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, nav.SubmitRegister{}, dispatcher.last())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, nav.ScreenAuth, dispatcher.state.Screen())
}

func TestNoticeExpires(t *testing.T) {
	m, dispatcher := newTestModel(nav.Initial())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	notice := dispatcher.state.Notice
	require.NotNil(t, notice)
	assert.Contains(t, m.View(), notice.Text)

	m.Update(noticeExpiredMsg{notice: &nav.Notice{Text: "an older notice"}})
	assert.Equal(t, notice, dispatcher.state.Notice)

	m.Update(noticeExpiredMsg{notice: notice})
	assert.Nil(t, dispatcher.state.Notice)
}

func chatState(recording nav.Recording) nav.State {
	user := api.UserProfile{ID: 1, Username: "alice"}
	return nav.State{
		User:  &user,
		View:  nav.ChatView{PartnerID: 2, Recording: recording},
		Chats: []api.ChatSummary{{ID: 2, Username: "bob", Online: true}},
	}
}

func TestRecordKey(t *testing.T) {
	tests := []struct {
		name      string
		recording nav.Recording
		want      nav.Trigger
	}{
		{"idle starts", nav.Recording{}, nav.StartRecording{}},
		{"active stops", nav.Recording{Active: true, Elapsed: 3}, nav.StopRecording{}},
		{"pending is disabled", nav.Recording{Pending: true}, nil},
		{"finalizing is disabled", nav.Recording{Finalizing: true}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, dispatcher := newTestModel(chatState(test.recording))

			m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})

			if test.want == nil {
				assert.Empty(t, dispatcher.triggers)
				return
			}
			require.NotEmpty(t, dispatcher.triggers)
			assert.Equal(t, test.want, dispatcher.triggers[0])
		})
	}
}

func TestChatDraft(t *testing.T) {
	m, dispatcher := newTestModel(chatState(nav.Recording{}))

	typeText(m, "hello")
	assert.Equal(t, "hello", dispatcher.state.View.(nav.ChatView).Draft)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, nav.SendText{}, dispatcher.last())
	assert.True(t, dispatcher.state.View.(nav.ChatView).Sending)

	m.Update(triggerMsg{trigger: nav.MessageSent{Epoch: dispatcher.state.Epoch}})
	assert.Equal(t, "", m.screen.(*chatScreen).draft.Value())
}

func TestChatView(t *testing.T) {
	text := "a fairly long message that should be wrapped onto several lines"
	duration := 7
	state := chatState(nav.Recording{Active: true, Elapsed: 65})
	view := state.View.(nav.ChatView)
	view.Messages = []api.Message{
		{ID: 1, SenderID: 2, SenderName: "bob", MessageText: &text, CreatedAt: time.Now()},
		{ID: 2, SenderID: 1, SenderName: "alice", IsVoice: true, VoiceDuration: &duration, CreatedAt: time.Now()},
	}
	state.View = view

	m, _ := newTestModel(state)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	rendered := m.View()
	assert.Contains(t, rendered, "bob")
	assert.Contains(t, rendered, "online")
	assert.Contains(t, rendered, "REC 1:05")
	assert.Contains(t, rendered, "Voice message (0:07)")
	assert.Contains(t, rendered, "stop & send")
}

func TestChatWithoutPartnerRendersNothing(t *testing.T) {
	state := chatState(nav.Recording{})
	state.View = nav.ChatView{}
	state.Chats = nil

	screen := newChatScreen(state)
	assert.Equal(t, "", screen.view(nav.State{View: nav.ChatView{PartnerID: 2}}))
}

func TestRenderMessageWraps(t *testing.T) {
	text := strings.Repeat("word ", 10)
	rendered := renderMessage(api.Message{SenderID: 2, SenderName: "bob", MessageText: &text}, 1, time.Now(), 12)

	for _, line := range strings.Split(strings.TrimSpace(rendered), "\n")[1:] {
		assert.LessOrEqual(t, len(strings.TrimSpace(line)), 12)
	}
}

func TestTabs(t *testing.T) {
	user := api.UserProfile{ID: 1, Username: "alice"}
	m, dispatcher := newTestModel(nav.State{User: &user, View: nav.ChatsView{}})

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, nav.ScreenSearch, dispatcher.state.Screen())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, nav.ScreenProfile, dispatcher.state.Screen())
	assert.Contains(t, m.View(), "alice")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	assert.Equal(t, nav.ScreenAuth, dispatcher.state.Screen())
}
