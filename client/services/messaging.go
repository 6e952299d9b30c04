package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JRI98/maxogram/internal/api"
)

type Messaging struct {
	httpClient *http.Client
	url        string
}

func NewMessaging(httpClient *http.Client, url string) *Messaging {
	return &Messaging{httpClient: orDefault(httpClient), url: url}
}

func (m *Messaging) Chats(ctx context.Context, userID int64) ([]api.ChatSummary, error) {
	var response api.ChatsResponse
	err := do(ctx, m.httpClient, http.MethodPost, m.url, api.UserRequest{
		Action: api.ActionGetChats,
		UserID: userID,
	}, &response)
	if err != nil {
		return nil, err
	}

	return response.Chats, nil
}

// Messages returns the conversation between the two users, oldest first.
func (m *Messaging) Messages(ctx context.Context, userID int64, partnerID int64) ([]api.Message, error) {
	requestURL, err := url.Parse(m.url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	query := requestURL.Query()
	query.Set("user_id", strconv.FormatInt(userID, 10))
	query.Set("other_user_id", strconv.FormatInt(partnerID, 10))
	requestURL.RawQuery = query.Encode()

	var response api.MessagesResponse
	err = do(ctx, m.httpClient, http.MethodGet, requestURL.String(), nil, &response)
	if err != nil {
		return nil, err
	}

	return response.Messages, nil
}

func (m *Messaging) Users(ctx context.Context) ([]api.UserProfile, error) {
	var response api.UsersResponse
	err := do(ctx, m.httpClient, http.MethodPost, m.url, api.Envelope{Action: api.ActionGetAllUsers}, &response)
	if err != nil {
		return nil, err
	}

	return response.Users, nil
}

func (m *Messaging) SendText(ctx context.Context, senderID int64, receiverID int64, text string) error {
	return m.send(ctx, api.SendMessageRequest{
		Action:      api.ActionSend,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		MessageText: text,
	})
}

// SendVoice sends a voice message whose audio is already embedded in
// voiceURL. duration is in seconds.
func (m *Messaging) SendVoice(ctx context.Context, senderID int64, receiverID int64, voiceURL string, duration int) error {
	return m.send(ctx, api.SendMessageRequest{
		Action:        api.ActionSend,
		SenderID:      senderID,
		ReceiverID:    receiverID,
		VoiceURL:      voiceURL,
		VoiceDuration: &duration,
		IsVoice:       true,
	})
}

func (m *Messaging) send(ctx context.Context, data api.SendMessageRequest) error {
	return do(ctx, m.httpClient, http.MethodPost, m.url, data, nil)
}
