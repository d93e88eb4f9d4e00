package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/jobcoach/internal/common"
	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []graphqlError             `json:"errors"`
}

// typename is used to peek at the discriminator of a union payload.
type typename struct {
	Typename string `json:"__typename"`
}

// authError is the common error member of the server's result unions.
type authError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do executes one GraphQL operation and returns the raw payload of field.
// bearer is sent as the Authorization header when non-empty.
func (c *HTTPClient) do(ctx context.Context, op, query string, vars map[string]any, field, bearer string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(graphqlRequest{OperationName: op, Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if c.deviceID != "" {
		req.Header.Set(common.DeviceIDHeaderName, c.deviceID)
	}
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "api request failed", "op", op, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s: %s", ErrUnauthorized, op, resp.Status)
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, op, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s: %s", ErrBadResponse, op, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrUnavailable, op, err)
	}

	var gr graphqlResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadResponse, op, err)
	}
	if len(gr.Errors) > 0 {
		return nil, mapGraphQLErrors(op, gr.Errors)
	}

	payload, ok := gr.Data[field]
	if !ok || len(payload) == 0 || string(payload) == "null" {
		return nil, fmt.Errorf("%w: %s: missing %q in data", ErrBadResponse, op, field)
	}
	c.logger.Debug(ctx, "api request done", "op", op, "request_id", requestID)
	return payload, nil
}

func mapGraphQLErrors(op string, errs []graphqlError) error {
	msgs := make([]string, 0, len(errs))
	sentinel := ErrBadResponse
	for _, e := range errs {
		msgs = append(msgs, e.Message)
		switch e.Extensions.Code {
		case "UNAUTHENTICATED", "FORBIDDEN", "TOKEN_EXPIRED", "INVALID_TOKEN":
			sentinel = ErrUnauthorized
		case "INTERNAL_SERVER_ERROR", "SERVICE_UNAVAILABLE":
			if !errors.Is(sentinel, ErrUnauthorized) {
				sentinel = ErrUnavailable
			}
		}
	}
	return fmt.Errorf("%w: %s: %s", sentinel, op, strings.Join(msgs, "; "))
}

// decodeUnion reads the __typename of payload and decodes it into the target
// registered for that name. Unknown names are ErrBadResponse.
func decodeUnion(op string, payload json.RawMessage, targets map[string]any) (string, error) {
	var t typename
	if err := json.Unmarshal(payload, &t); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBadResponse, op, err)
	}
	target, ok := targets[t.Typename]
	if !ok {
		return "", fmt.Errorf("%w: %s: unexpected __typename %q", ErrBadResponse, op, t.Typename)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBadResponse, op, err)
	}
	return t.Typename, nil
}
