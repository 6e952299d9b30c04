package services

import (
	"context"
	"net/http"

	"github.com/JRI98/maxogram/internal/api"
)

type Recovery struct {
	httpClient *http.Client
	url        string
}

func NewRecovery(httpClient *http.Client, url string) *Recovery {
	return &Recovery{httpClient: orDefault(httpClient), url: url}
}

// RequestCode asks for a reset code. The code is delivered as a chat message
// from the support account, not in the response.
func (r *Recovery) RequestCode(ctx context.Context, username string) (string, error) {
	return r.submit(ctx, api.RecoveryRequest{
		Action:   api.ActionRequestCode,
		Username: username,
	})
}

func (r *Recovery) ResetPassword(ctx context.Context, username string, code string, newPassword string) (string, error) {
	return r.submit(ctx, api.RecoveryRequest{
		Action:      api.ActionResetPassword,
		Username:    username,
		Code:        code,
		NewPassword: newPassword,
	})
}

func (r *Recovery) submit(ctx context.Context, data api.RecoveryRequest) (string, error) {
	var response api.RecoveryResponse
	err := do(ctx, r.httpClient, http.MethodPost, r.url, data, &response)
	if err != nil {
		return "", err
	}

	return response.Message, nil
}
