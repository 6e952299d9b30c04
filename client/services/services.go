package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

func do(ctx context.Context, httpClient *http.Client, method string, requestURL string, data any, result any) error {
	var bodyReader io.Reader
	if data != nil {
		dataBytes, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal data: %w", err)
		}
		bodyReader = bytes.NewReader(dataBytes)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if data != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set(RequestIDHeader, uuid.NewString())

	response, err := httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return serviceError(response.StatusCode, responseBody)
	}

	if result == nil {
		return nil
	}

	err = json.Unmarshal(responseBody, result)
	if err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return nil
}

// serviceError keeps the server's message when the body carries one.
func serviceError(status int, body []byte) *api.Error {
	var errorResponse api.ErrorResponse
	_ = json.Unmarshal(body, &errorResponse)

	return &api.Error{Status: status, Message: errorResponse.Error}
}

func orDefault(httpClient *http.Client) *http.Client {
	if httpClient == nil {
		return http.DefaultClient
	}
	return httpClient
}
