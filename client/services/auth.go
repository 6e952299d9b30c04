package services

import (
	"context"
	"net/http"

	"github.com/JRI98/maxogram/internal/api"
)

type Auth struct {
	httpClient *http.Client
	url        string
}

func NewAuth(httpClient *http.Client, url string) *Auth {
	return &Auth{httpClient: orDefault(httpClient), url: url}
}

func (a *Auth) Login(ctx context.Context, username string, password string) (api.UserProfile, error) {
	return a.authenticate(ctx, api.AuthRequest{
		Action:   api.ActionLogin,
		Username: username,
		Password: password,
	})
}

func (a *Auth) Register(ctx context.Context, username string, email string, password string) (api.UserProfile, error) {
	return a.authenticate(ctx, api.AuthRequest{
		Action:   api.ActionRegister,
		Username: username,
		Email:    email,
		Password: password,
	})
}

func (a *Auth) authenticate(ctx context.Context, data api.AuthRequest) (api.UserProfile, error) {
	var response api.UserResponse
	err := do(ctx, a.httpClient, http.MethodPost, a.url, data, &response)
	if err != nil {
		return api.UserProfile{}, err
	}

	return response.User, nil
}
