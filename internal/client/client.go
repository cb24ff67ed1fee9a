// Package client calls a remote cover resolver and falls back to local
// resolution when the service is unavailable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-cover-resolver/internal/catalog"
	apperrors "go-cover-resolver/internal/errors"
	"go-cover-resolver/internal/logger"
	"go-cover-resolver/pkg/models"

	"github.com/sirupsen/logrus"
)

const maxResponseSize = 64 << 10

// Client talks to POST /generate-cover.
type Client struct {
	baseURL  string
	http     *http.Client
	fallback *catalog.Catalog
}

// New creates a client for the service at baseURL. fallback is used by
// CoverURL when the remote call fails; nil means the built-in catalog.
func New(baseURL string, timeout time.Duration, fallback *catalog.Catalog) *Client {
	if fallback == nil {
		fallback = catalog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		fallback: fallback,
	}
}

// GenerateCover asks the remote service for a cover.
func (c *Client) GenerateCover(ctx context.Context, title, description string) (*models.CoverResponse, error) {
	payload, err := json.Marshal(models.CoverRequest{Title: title, Description: description})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-cover", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("cover service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read cover response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return nil, &apperrors.AppError{
			Type:       remoteErrorType(resp.StatusCode),
			Message:    msg,
			StatusCode: resp.StatusCode,
		}
	}

	var cover models.CoverResponse
	if err := json.Unmarshal(body, &cover); err != nil {
		return nil, apperrors.NewNetworkError("invalid cover response", err)
	}
	if cover.URL == "" {
		return nil, apperrors.NewNetworkError("cover response has no url", nil)
	}
	return &cover, nil
}

// CoverURL returns the remote cover URL, or the locally resolved one if
// the remote call fails for any reason.
func (c *Client) CoverURL(ctx context.Context, title, description string) string {
	cover, err := c.GenerateCover(ctx, title, description)
	if err == nil {
		return cover.URL
	}

	_, url := c.fallback.Resolve(title)
	logger.WithError(err).WithFields(logrus.Fields{
		"title":    title,
		"fallback": url,
		"service":  c.baseURL,
	}).Warn("Cover service failed, using local catalog")
	return url
}

func remoteErrorType(status int) apperrors.ErrorType {
	switch {
	case status == http.StatusRequestEntityTooLarge:
		return apperrors.ErrorTypePayloadTooLarge
	case status == http.StatusGatewayTimeout:
		return apperrors.ErrorTypeTimeout
	case status >= 400 && status < 500:
		return apperrors.ErrorTypeInvalidRequest
	case status >= 500:
		return apperrors.ErrorTypeInternal
	default:
		return apperrors.ErrorType(fmt.Sprintf("http_%d", status))
	}
}
