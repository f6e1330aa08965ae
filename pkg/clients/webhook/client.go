package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mukisa/dukani/internal/domain/models"
)

// Client posts stock digests to the configured alert endpoint.
type Client interface {
	PostDigest(ctx context.Context, digest models.StockDigest) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a webhook client for the given endpoint URL.
func NewClient(endpoint string) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(endpoint).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// apiError represents an error payload returned by the alert endpoint.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PostDigest delivers a digest as a JSON POST to the endpoint.
func (c *APIClient) PostDigest(ctx context.Context, digest models.StockDigest) error {
	respErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(digest).
		SetError(respErr).
		Post("")
	if err != nil {
		return fmt.Errorf("post stock digest: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := respErr.Message
		if message == "" {
			message = respErr.Error
		}
		return fmt.Errorf("webhook error: status=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
