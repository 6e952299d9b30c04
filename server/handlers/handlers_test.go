package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/media"
	"github.com/JRI98/maxogram/internal/validate"
	"github.com/JRI98/maxogram/server/database"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const supportUsername = "maxogram_support"

type fakeNotifier struct {
	mu       sync.Mutex
	messages []api.Message
	err      error
}

func (n *fakeNotifier) Notify(_ context.Context, message api.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return n.err
}

func (n *fakeNotifier) sent() []api.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]api.Message(nil), n.messages...)
}

// testClock moves forward by a second on every reading so that consecutive
// rows get distinct timestamps.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	e        *echo.Echo
	notifier *fakeNotifier
	clock    *testClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "maxogram.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := &fakeNotifier{}

	h, err := NewHandler(context.Background(), db, notifier, supportUsername, logger)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	h.now = clock.Now

	return &testServer{e: NewRouter(h, logger), notifier: notifier, clock: clock}
}

func (s *testServer) call(t *testing.T, method string, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	request := httptest.NewRequest(method, target, reader)
	if body != nil {
		request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	recorder := httptest.NewRecorder()
	s.e.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var result T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result), recorder.Body.String())
	return result
}

func requireError(t *testing.T, recorder *httptest.ResponseRecorder, status int) string {
	t.Helper()

	require.Equal(t, status, recorder.Code, recorder.Body.String())
	return decode[api.ErrorResponse](t, recorder).Error
}

func (s *testServer) register(t *testing.T, username string) api.UserProfile {
	t.Helper()

	recorder := s.call(t, http.MethodPost, "/auth", api.AuthRequest{
		Action:   api.ActionRegister,
		Username: username,
		Password: "password-" + username,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	return decode[api.UserResponse](t, recorder).User
}

func (s *testServer) sendText(t *testing.T, from int64, to int64, text string) *httptest.ResponseRecorder {
	t.Helper()

	return s.call(t, http.MethodPost, "/messages", api.SendMessageRequest{
		Action:      api.ActionSend,
		SenderID:    from,
		ReceiverID:  to,
		MessageText: text,
	})
}

func (s *testServer) chats(t *testing.T, userID int64) []api.ChatSummary {
	t.Helper()

	recorder := s.call(t, http.MethodPost, "/messages", api.UserRequest{Action: api.ActionGetChats, UserID: userID})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	return decode[api.ChatsResponse](t, recorder).Chats
}

func (s *testServer) messages(t *testing.T, userID int64, otherUserID int64) []api.Message {
	t.Helper()

	recorder := s.call(t, http.MethodGet, fmt.Sprintf("/messages?user_id=%d&other_user_id=%d", userID, otherUserID), nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	return decode[api.MessagesResponse](t, recorder).Messages
}

func TestAvatarInitials(t *testing.T) {
	assert.Equal(t, "AL", avatarInitials("alice"))
	assert.Equal(t, "JD", avatarInitials("john doe"))
	assert.Equal(t, "X", avatarInitials("x"))
	assert.Equal(t, "", avatarInitials(""))
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	user := s.register(t, "alice")
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "AL", user.AvatarInitials)
	assert.True(t, user.Online)

	duplicate := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionRegister, Username: "alice", Password: "x"})
	assert.Equal(t, "A user with this name already exists", requireError(t, duplicate, http.StatusConflict))

	wrong := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionLogin, Username: "alice", Password: "nope"})
	assert.Equal(t, "Invalid username or password", requireError(t, wrong, http.StatusUnauthorized))

	unknown := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionLogin, Username: "nobody", Password: "nope"})
	requireError(t, unknown, http.StatusUnauthorized)

	login := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionLogin, Username: " alice ", Password: "password-alice"})
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())
	assert.Equal(t, user.ID, decode[api.UserResponse](t, login).User.ID)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		request api.AuthRequest
		status  int
		message string
	}{
		{"short username", api.AuthRequest{Action: api.ActionRegister, Username: "ab", Password: "x"}, http.StatusBadRequest, validate.ErrInvalidUsername.Error()},
		{"blank username", api.AuthRequest{Action: api.ActionRegister, Username: "   ", Password: "x"}, http.StatusBadRequest, validate.ErrEmptyCredentials.Error()},
		{"missing password", api.AuthRequest{Action: api.ActionRegister, Username: "alice"}, http.StatusBadRequest, "password is required"},
		{"bad email", api.AuthRequest{Action: api.ActionRegister, Username: "alice", Email: "not-an-email", Password: "x"}, http.StatusBadRequest, validate.ErrInvalidEmail.Error()},
		{"unknown action", api.AuthRequest{Action: "fly", Username: "alice", Password: "x"}, http.StatusBadRequest, "invalid action"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := s.call(t, http.MethodPost, "/auth", test.request)
			assert.Equal(t, test.message, requireError(t, recorder, test.status))
		})
	}
}

func TestRegisterDuplicateContacts(t *testing.T) {
	s := newTestServer(t)

	first := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionRegister, Username: "alice", Email: "a@example.com", Phone: "+100", Password: "x"})
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	email := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionRegister, Username: "bob", Email: "a@example.com", Password: "x"})
	assert.Equal(t, "Email is already taken", requireError(t, email, http.StatusConflict))

	phone := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionRegister, Username: "bob", Phone: "+100", Password: "x"})
	assert.Equal(t, "Phone is already taken", requireError(t, phone, http.StatusConflict))
}

func TestSendAndRead(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	sent := s.sendText(t, alice.ID, bob.ID, "  hello bob  ")
	require.Equal(t, http.StatusCreated, sent.Code, sent.Body.String())
	message := decode[api.SendResponse](t, sent).Message
	require.NotNil(t, message.MessageText)
	assert.Equal(t, "hello bob", *message.MessageText)
	assert.Equal(t, "alice", message.SenderName)

	duration := 4
	voice := s.call(t, http.MethodPost, "/messages", api.SendMessageRequest{
		Action:        api.ActionSend,
		SenderID:      alice.ID,
		ReceiverID:    bob.ID,
		VoiceURL:      "data:audio/wav;base64,UklGRg==",
		VoiceDuration: &duration,
		IsVoice:       true,
	})
	require.Equal(t, http.StatusCreated, voice.Code, voice.Body.String())

	notified := s.notifier.sent()
	require.Len(t, notified, 2)
	assert.Equal(t, bob.ID, notified[0].ReceiverID)

	chats := s.chats(t, bob.ID)
	require.Len(t, chats, 1)
	assert.Equal(t, alice.ID, chats[0].ID)
	assert.Equal(t, "alice", chats[0].Username)
	assert.Equal(t, 2, chats[0].UnreadCount)
	assert.True(t, chats[0].LastMessageIsVoice)
	assert.Nil(t, chats[0].LastMessage)

	messages := s.messages(t, bob.ID, alice.ID)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello bob", *messages[0].MessageText)
	assert.True(t, messages[1].IsVoice)
	require.NotNil(t, messages[1].VoiceDuration)
	assert.Equal(t, 4, *messages[1].VoiceDuration)
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))

	assert.Equal(t, 0, s.chats(t, bob.ID)[0].UnreadCount)

	aliceChats := s.chats(t, alice.ID)
	require.Len(t, aliceChats, 1)
	assert.Equal(t, bob.ID, aliceChats[0].ID)
	assert.Equal(t, 0, aliceChats[0].UnreadCount)
}

func TestChatsOrderedByLastMessage(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	carol := s.register(t, "carol")

	require.Equal(t, http.StatusCreated, s.sendText(t, bob.ID, alice.ID, "first").Code)
	require.Equal(t, http.StatusCreated, s.sendText(t, carol.ID, alice.ID, "second").Code)
	require.Equal(t, http.StatusCreated, s.sendText(t, alice.ID, bob.ID, "third").Code)

	chats := s.chats(t, alice.ID)
	require.Len(t, chats, 2)
	assert.Equal(t, bob.ID, chats[0].ID)
	assert.Equal(t, "third", *chats[0].LastMessage)
	assert.Equal(t, 1, chats[0].UnreadCount)
	assert.Equal(t, carol.ID, chats[1].ID)
	assert.Equal(t, 1, chats[1].UnreadCount)
}

func TestSendRejects(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	assert.Equal(t, "Message cannot be empty", requireError(t, s.sendText(t, alice.ID, bob.ID, "   "), http.StatusBadRequest))
	assert.Equal(t, "Cannot send a message to yourself", requireError(t, s.sendText(t, alice.ID, alice.ID, "hi"), http.StatusBadRequest))
	assert.Equal(t, "User not found", requireError(t, s.sendText(t, alice.ID, 999, "hi"), http.StatusNotFound))
	assert.Equal(t, "sender_id is required", requireError(t, s.sendText(t, 0, bob.ID, "hi"), http.StatusBadRequest))

	unknown := s.call(t, http.MethodPost, "/messages", api.Envelope{Action: "fly"})
	assert.Equal(t, "Unknown action", requireError(t, unknown, http.StatusBadRequest))

	missing := s.call(t, http.MethodGet, "/messages?user_id=1", nil)
	assert.Equal(t, "other_user_id is required", requireError(t, missing, http.StatusBadRequest))

	assert.Empty(t, s.notifier.sent())
}

func TestSendSurvivesNotifierFailure(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	s.notifier.err = assert.AnError

	assert.Equal(t, http.StatusCreated, s.sendText(t, alice.ID, bob.ID, "hi").Code)
	assert.Len(t, s.messages(t, bob.ID, alice.ID), 1)
}

func TestUsers(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "bob")
	s.register(t, "alice")

	recorder := s.call(t, http.MethodPost, "/messages", api.Envelope{Action: api.ActionGetAllUsers})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	users := decode[api.UsersResponse](t, recorder).Users
	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, user.Username)
		assert.Nil(t, user.Email)
	}
	assert.Equal(t, []string{"alice", "bob", supportUsername}, names)
}

func pngDataURL() string {
	return media.DataURL([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"))
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	s.register(t, "bob")

	update := func(request api.UpdateProfileRequest) *httptest.ResponseRecorder {
		request.Action = api.ActionUpdateProfile
		request.UserID = alice.ID
		return s.call(t, http.MethodPost, "/profile", request)
	}
	ptr := func(value string) *string { return &value }

	get := s.call(t, http.MethodPost, "/profile", api.UserRequest{Action: api.ActionGetProfile, UserID: alice.ID})
	require.Equal(t, http.StatusOK, get.Code, get.Body.String())
	assert.Equal(t, "alice", decode[api.UserResponse](t, get).User.Username)

	missing := s.call(t, http.MethodPost, "/profile", api.UserRequest{Action: api.ActionGetProfile, UserID: 999})
	assert.Equal(t, "User not found", requireError(t, missing, http.StatusNotFound))

	renamed := update(api.UpdateProfileRequest{NewUsername: ptr("zed_alice")})
	require.Equal(t, http.StatusOK, renamed.Code, renamed.Body.String())
	user := decode[api.UserResponse](t, renamed).User
	assert.Equal(t, "zed_alice", user.Username)
	assert.Equal(t, "ZE", user.AvatarInitials)
	require.NotNil(t, user.UsernameLastChanged)

	same := update(api.UpdateProfileRequest{NewUsername: ptr("zed_alice"), BirthDate: ptr("1990-04-01")})
	require.Equal(t, http.StatusOK, same.Code, same.Body.String())
	assert.Equal(t, "1990-04-01", *decode[api.UserResponse](t, same).User.BirthDate)

	tooSoon := update(api.UpdateProfileRequest{NewUsername: ptr("alice_again")})
	assert.Equal(t, "Username can be changed once every 3 days. Days left: 3", requireError(t, tooSoon, http.StatusTooManyRequests))

	taken := update(api.UpdateProfileRequest{NewUsername: ptr("bob")})
	requireError(t, taken, http.StatusConflict)

	s.clock.advance(UsernameCooldown)
	later := update(api.UpdateProfileRequest{NewUsername: ptr("alice_again")})
	require.Equal(t, http.StatusOK, later.Code, later.Body.String())

	invalid := update(api.UpdateProfileRequest{NewUsername: ptr("no spaces allowed")})
	assert.Equal(t, validate.ErrInvalidUsername.Error(), requireError(t, invalid, http.StatusBadRequest))

	badDate := update(api.UpdateProfileRequest{BirthDate: ptr("01.04.1990")})
	assert.Equal(t, validate.ErrInvalidBirthDate.Error(), requireError(t, badDate, http.StatusBadRequest))

	gif := update(api.UpdateProfileRequest{AvatarURL: ptr(media.DataURL([]byte("GIF89a\x01\x00\x01\x00")))})
	assert.Equal(t, media.ErrAvatarType.Error(), requireError(t, gif, http.StatusBadRequest))

	avatar := update(api.UpdateProfileRequest{AvatarURL: ptr(pngDataURL())})
	require.Equal(t, http.StatusOK, avatar.Code, avatar.Body.String())
	user = decode[api.UserResponse](t, avatar).User
	assert.Equal(t, pngDataURL(), *user.AvatarURL)
	assert.Equal(t, "1990-04-01", *user.BirthDate)
	assert.Equal(t, "alice_again", user.Username)
}

var codePattern = regexp.MustCompile(`\d{6}`)

func TestRecovery(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")

	submit := func(request api.RecoveryRequest) *httptest.ResponseRecorder {
		return s.call(t, http.MethodPost, "/recovery", request)
	}

	requested := submit(api.RecoveryRequest{Action: api.ActionRequestCode, Username: "alice"})
	require.Equal(t, http.StatusOK, requested.Code, requested.Body.String())
	response := decode[api.RecoveryResponse](t, requested)
	assert.Equal(t, alice.ID, response.UserID)
	assert.NotRegexp(t, codePattern, response.Message)

	notified := s.notifier.sent()
	require.Len(t, notified, 1)
	assert.Equal(t, alice.ID, notified[0].ReceiverID)
	assert.Equal(t, supportUsername, notified[0].SenderName)
	code := codePattern.FindString(*notified[0].MessageText)
	require.NotEmpty(t, code)

	chats := s.chats(t, alice.ID)
	require.Len(t, chats, 1)
	assert.Equal(t, supportUsername, chats[0].Username)

	wrong := submit(api.RecoveryRequest{Action: api.ActionResetPassword, Username: "alice", Code: "abcdef", NewPassword: "new"})
	assert.Equal(t, "Invalid or expired code", requireError(t, wrong, http.StatusBadRequest))

	reset := submit(api.RecoveryRequest{Action: api.ActionResetPassword, Username: "alice", Code: code, NewPassword: "new"})
	require.Equal(t, http.StatusOK, reset.Code, reset.Body.String())

	reused := submit(api.RecoveryRequest{Action: api.ActionResetPassword, Username: "alice", Code: code, NewPassword: "newer"})
	requireError(t, reused, http.StatusBadRequest)

	login := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionLogin, Username: "alice", Password: "new"})
	assert.Equal(t, http.StatusOK, login.Code, login.Body.String())
	old := s.call(t, http.MethodPost, "/auth", api.AuthRequest{Action: api.ActionLogin, Username: "alice", Password: "password-alice"})
	requireError(t, old, http.StatusUnauthorized)
}

func TestRecoveryCodeExpires(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice")

	requested := s.call(t, http.MethodPost, "/recovery", api.RecoveryRequest{Action: api.ActionRequestCode, Username: "alice"})
	require.Equal(t, http.StatusOK, requested.Code, requested.Body.String())
	code := codePattern.FindString(*s.notifier.sent()[0].MessageText)

	s.clock.advance(RecoveryCodeTTL)

	expired := s.call(t, http.MethodPost, "/recovery", api.RecoveryRequest{Action: api.ActionResetPassword, Username: "alice", Code: code, NewPassword: "new"})
	assert.Equal(t, "Invalid or expired code", requireError(t, expired, http.StatusBadRequest))
}

func TestRecoveryRejects(t *testing.T) {
	s := newTestServer(t)

	unknown := s.call(t, http.MethodPost, "/recovery", api.RecoveryRequest{Action: api.ActionRequestCode, Username: "nobody"})
	assert.Equal(t, "User not found", requireError(t, unknown, http.StatusNotFound))

	incomplete := s.call(t, http.MethodPost, "/recovery", api.RecoveryRequest{Action: api.ActionResetPassword, Username: "nobody"})
	assert.Equal(t, "code is required", requireError(t, incomplete, http.StatusBadRequest))
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t)

	notFound := s.call(t, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusText(http.StatusNotFound), requireError(t, notFound, http.StatusNotFound))

	request := httptest.NewRequest(http.MethodPost, "/auth", bytes.NewReader([]byte("{")))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	recorder := httptest.NewRecorder()
	s.e.ServeHTTP(recorder, request)
	requireError(t, recorder, http.StatusBadRequest)

	request = httptest.NewRequest(http.MethodPost, "/profile", bytes.NewReader([]byte("{")))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	recorder = httptest.NewRecorder()
	s.e.ServeHTTP(recorder, request)
	assert.Equal(t, "Malformed JSON body", requireError(t, recorder, http.StatusBadRequest))
}
