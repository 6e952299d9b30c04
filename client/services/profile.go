package services

import (
	"context"
	"net/http"

	"github.com/JRI98/maxogram/internal/api"
)

type Profile struct {
	httpClient *http.Client
	url        string
}

func NewProfile(httpClient *http.Client, url string) *Profile {
	return &Profile{httpClient: orDefault(httpClient), url: url}
}

func (p *Profile) Get(ctx context.Context, userID int64) (api.UserProfile, error) {
	var response api.UserResponse
	err := do(ctx, p.httpClient, http.MethodPost, p.url, api.UserRequest{
		Action: api.ActionGetProfile,
		UserID: userID,
	}, &response)
	if err != nil {
		return api.UserProfile{}, err
	}

	return response.User, nil
}

// Update submits the fields set in request and returns the profile as the
// server stored it.
func (p *Profile) Update(ctx context.Context, request api.UpdateProfileRequest) (api.UserResponse, error) {
	request.Action = api.ActionUpdateProfile

	var response api.UserResponse
	err := do(ctx, p.httpClient, http.MethodPost, p.url, request, &response)
	if err != nil {
		return api.UserResponse{}, err
	}

	return response, nil
}
