package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method    string
	query     map[string]string
	body      map[string]any
	requestID string
}

// serve answers every request with status and body and records what it got.
func serve(t *testing.T, status int, body any) (*httptest.Server, *[]recorded) {
	t.Helper()

	var requests []recorded
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := recorded{
			method:    r.Method,
			query:     map[string]string{},
			requestID: r.Header.Get(RequestIDHeader),
		}
		for key := range r.URL.Query() {
			request.query[key] = r.URL.Query().Get(key)
		}

		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		if len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &request.body))
		}
		requests = append(requests, request)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func TestAuthLogin(t *testing.T) {
	user := api.UserProfile{ID: 4, Username: "valid_user1", AvatarInitials: "VA"}
	server, requests := serve(t, http.StatusOK, api.UserResponse{User: user})

	got, err := NewAuth(server.Client(), server.URL).Login(context.Background(), "valid_user1", "secret")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	require.Len(t, *requests, 1)
	request := (*requests)[0]
	assert.Equal(t, http.MethodPost, request.method)
	assert.Equal(t, map[string]any{"action": "login", "username": "valid_user1", "password": "secret"}, request.body)

	_, err = uuid.Parse(request.requestID)
	assert.NoError(t, err)
}

func TestAuthRegisterServiceError(t *testing.T) {
	server, requests := serve(t, http.StatusConflict, api.ErrorResponse{Error: "Username already exists"})

	_, err := NewAuth(server.Client(), server.URL).Register(context.Background(), "taken", "a@b.co", "pw")

	var serviceErr *api.Error
	require.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, http.StatusConflict, serviceErr.Status)
	assert.Equal(t, "Username already exists", serviceErr.Error())
	assert.Equal(t, "a@b.co", (*requests)[0].body["email"])
	assert.Equal(t, "register", (*requests)[0].body["action"])
}

func TestServiceErrorWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	_, err := NewMessaging(server.Client(), server.URL).Users(context.Background())
	assert.EqualError(t, err, "unexpected status code: 502")
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := NewMessaging(nil, server.URL).Chats(context.Background(), 1)
	require.Error(t, err)

	var serviceErr *api.Error
	assert.False(t, errors.As(err, &serviceErr))
	assert.ErrorContains(t, err, "failed to send request")
}

func TestCanceledContext(t *testing.T) {
	server, requests := serve(t, http.StatusOK, api.ChatsResponse{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMessaging(server.Client(), server.URL).Chats(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *requests)
}

func TestMessagingChats(t *testing.T) {
	text := "hi"
	chats := []api.ChatSummary{{ID: 2, Username: "bob", LastMessage: &text, UnreadCount: 3}}
	server, requests := serve(t, http.StatusOK, api.ChatsResponse{Chats: chats})

	got, err := NewMessaging(server.Client(), server.URL).Chats(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hi", *got[0].LastMessage)
	assert.Equal(t, 3, got[0].UnreadCount)
	assert.Equal(t, map[string]any{"action": "get_chats", "user_id": float64(1)}, (*requests)[0].body)
}

func TestMessagingMessages(t *testing.T) {
	server, requests := serve(t, http.StatusOK, api.MessagesResponse{Messages: []api.Message{{ID: 10}, {ID: 11}}})

	got, err := NewMessaging(server.Client(), server.URL+"/messages").Messages(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	request := (*requests)[0]
	assert.Equal(t, http.MethodGet, request.method)
	assert.Equal(t, map[string]string{"user_id": "1", "other_user_id": "2"}, request.query)
	assert.Nil(t, request.body)
}

func TestMessagingSend(t *testing.T) {
	server, requests := serve(t, http.StatusCreated, api.SendResponse{Status: "sent"})
	messaging := NewMessaging(server.Client(), server.URL)

	require.NoError(t, messaging.SendText(context.Background(), 1, 2, "hello"))
	require.NoError(t, messaging.SendVoice(context.Background(), 1, 2, "data:audio/wav;base64,AAAA", 7))

	assert.Equal(t, map[string]any{
		"action":       "send",
		"sender_id":    float64(1),
		"receiver_id":  float64(2),
		"message_text": "hello",
		"is_voice":     false,
	}, (*requests)[0].body)

	assert.Equal(t, map[string]any{
		"action":         "send",
		"sender_id":      float64(1),
		"receiver_id":    float64(2),
		"voice_url":      "data:audio/wav;base64,AAAA",
		"voice_duration": float64(7),
		"is_voice":       true,
	}, (*requests)[1].body)
}

func TestProfileUpdateOmitsUnchangedFields(t *testing.T) {
	user := api.UserProfile{ID: 1, Username: "alice"}
	server, requests := serve(t, http.StatusOK, api.UserResponse{User: user, Message: "Profile updated"})
	profile := NewProfile(server.Client(), server.URL)

	response, err := profile.Update(context.Background(), api.UpdateProfileRequest{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, user, response.User)
	assert.Equal(t, "Profile updated", response.Message)

	body := (*requests)[0].body
	assert.Equal(t, map[string]any{"action": "update_profile", "user_id": float64(1)}, body)
	assert.NotContains(t, body, "new_username")

	name := "alice_2"
	_, err = profile.Update(context.Background(), api.UpdateProfileRequest{UserID: 1, NewUsername: &name})
	require.NoError(t, err)
	assert.Equal(t, "alice_2", (*requests)[1].body["new_username"])
}

func TestProfileGet(t *testing.T) {
	email := "a@b.co"
	server, requests := serve(t, http.StatusOK, api.UserResponse{User: api.UserProfile{ID: 5, Email: &email}})

	user, err := NewProfile(server.Client(), server.URL).Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, email, *user.Email)
	assert.Equal(t, "get_profile", (*requests)[0].body["action"])
}

func TestRecovery(t *testing.T) {
	server, requests := serve(t, http.StatusOK, api.RecoveryResponse{Message: "Code sent"})
	recovery := NewRecovery(server.Client(), server.URL)

	message, err := recovery.RequestCode(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Code sent", message)
	assert.Equal(t, map[string]any{"action": "request_code", "username": "alice"}, (*requests)[0].body)

	_, err = recovery.ResetPassword(context.Background(), "alice", "123456", "new")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"action":       "reset_password",
		"username":     "alice",
		"code":         "123456",
		"new_password": "new",
	}, (*requests)[1].body)
}
