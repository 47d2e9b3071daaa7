package destination

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopsync/internal/config"
	"shopsync/internal/constants"
	"shopsync/internal/logger"
	"shopsync/pkg/circuitbreaker"
	pkgerrors "shopsync/pkg/errors"
	"shopsync/pkg/metrics"
)

// Client talks to the workspace destination API: schema introspection and
// record creation against a workspace-scoped credential.
type Client interface {
	RetrieveSchema(ctx context.Context, databaseID, token string) (*Schema, error)
	CreatePage(ctx context.Context, databaseID, token string, props Properties) (string, error)
}

type HTTPClient struct {
	baseURL    string
	apiVersion string
	client     *http.Client
	breaker    *circuitbreaker.Wrapper
	logger     logger.Logger
}

func NewHTTPClient(cfg config.DestinationConfig, cbCfg *config.CircuitBreakerConfig, log logger.Logger) *HTTPClient {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	} else {
		timeout = timeout * time.Second
	}

	c := &HTTPClient{
		baseURL:    cfg.BaseURL,
		apiVersion: cfg.APIVersion,
		client:     &http.Client{Timeout: timeout},
		logger:     log,
	}

	if cbCfg != nil && cbCfg.Enabled {
		breakerCfg := circuitbreaker.DefaultConfig("destination-api")
		if cbCfg.MaxRequests > 0 {
			breakerCfg.MaxRequests = cbCfg.MaxRequests
		}
		if cbCfg.Interval > 0 {
			breakerCfg.Interval = cbCfg.Interval
		}
		if cbCfg.Timeout > 0 {
			breakerCfg.Timeout = cbCfg.Timeout
		}
		c.breaker = circuitbreaker.NewWrapper(breakerCfg)
	}

	return c
}

type schemaResponse struct {
	ID         string                  `json:"id"`
	Properties map[string]propertySpec `json:"properties"`
}

type propertySpec struct {
	Type string `json:"type"`
}

type createPageRequest struct {
	Parent     parentRef  `json:"parent"`
	Properties Properties `json:"properties"`
}

type parentRef struct {
	DatabaseID string `json:"database_id"`
}

type createPageResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RetrieveSchema fetches the live property name/type map of a database.
// An error, a missing database, or a credential that no longer has access
// all surface as DestinationUnreachable.
func (c *HTTPClient) RetrieveSchema(ctx context.Context, databaseID, token string) (*Schema, error) {
	url := fmt.Sprintf("%s/v1/databases/%s", c.baseURL, databaseID)

	body, err := c.do(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return nil, err
	}

	var resp schemaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pkgerrors.ErrDestinationUnreachable.WithCause(err).
			WithDetail("message", "destination returned an undecodable schema")
	}

	schema := &Schema{
		DatabaseID: databaseID,
		Properties: make(map[string]PropertyType, len(resp.Properties)),
	}
	for name, spec := range resp.Properties {
		schema.Properties[name] = PropertyType(spec.Type)
	}

	return schema, nil
}

// CreatePage writes a mapped record and returns the opaque record id.
// 4xx responses become WriteRejected carrying the destination's validation
// message; network errors and 5xx become DestinationUnreachable. Retry
// policy, if any, belongs to the caller.
func (c *HTTPClient) CreatePage(ctx context.Context, databaseID, token string, props Properties) (string, error) {
	url := fmt.Sprintf("%s/v1/pages", c.baseURL)

	payload, err := json.Marshal(createPageRequest{
		Parent:     parentRef{DatabaseID: databaseID},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal page request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, url, token, payload)
	if err != nil {
		return "", err
	}

	var resp createPageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", pkgerrors.ErrDestinationUnreachable.WithCause(err).
			WithDetail("message", "destination returned an undecodable create response")
	}

	return resp.ID, nil
}

func (c *HTTPClient) do(ctx context.Context, method, url, token string, payload []byte) ([]byte, error) {
	call := func() (interface{}, error) {
		return c.roundTrip(ctx, method, url, token, payload)
	}

	var result interface{}
	var err error
	if c.breaker != nil {
		result, err = c.breaker.ExecuteWithContext(ctx, call)
		if err != nil {
			// An open breaker looks like an unreachable destination to
			// the caller; typed API errors pass through untouched.
			var appErr *pkgerrors.Error
			if !errors.As(err, &appErr) {
				err = pkgerrors.ErrDestinationUnreachable.WithCause(err)
			}
		}
	} else {
		result, err = call()
	}

	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, url, token string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if c.apiVersion != "" {
		req.Header.Set("Notion-Version", c.apiVersion)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.DestinationRequestDuration.WithLabelValues(method, "error").Observe(float64(time.Since(start).Milliseconds()))
		return nil, pkgerrors.ErrDestinationUnreachable.WithCause(err)
	}
	defer resp.Body.Close()

	metrics.DestinationRequestDuration.WithLabelValues(method, fmt.Sprintf("%d", resp.StatusCode)).
		Observe(float64(time.Since(start).Milliseconds()))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.ErrDestinationUnreachable.WithCause(err)
	}

	if resp.StatusCode >= constants.HTTPStatusOKMin && resp.StatusCode < constants.HTTPStatusOKMax {
		return body, nil
	}

	var apiErr apiError
	detail := string(body)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		detail = apiErr.Message
	}

	c.logger.WarnwCtx(ctx, "Destination API returned an error",
		"method", method,
		"status", resp.StatusCode,
		"detail", detail,
	)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, pkgerrors.ErrWriteRejected.
			WithDetail("message", detail).
			WithDetail("status", resp.StatusCode)
	}

	return nil, pkgerrors.ErrDestinationUnreachable.
		WithDetail("message", detail).
		WithDetail("status", resp.StatusCode)
}
