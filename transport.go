package lattice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const restBasePath = "/lattice/rest/v1"

// Default web routes for the query endpoints, resolved against
// Config.BaseURL when no explicit URL is configured.
const (
	defaultNamesPath    = "/lattice/web/lattice/names"
	defaultBranchesPath = "/lattice/web/lattice/branches"
)

// transport is a thin HTTP wrapper for lattice model service communication.
type transport struct {
	httpClient *http.Client
	authToken  string
	headers    map[string]string
}

func newTransport(cfg clientConfig) *transport {
	client := cfg.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	return &transport{
		httpClient: client,
		authToken:  cfg.authToken,
		headers:    cfg.headers,
	}
}

// postQuery issues one form-encoded POST with a single "query"
// parameter and decodes the JSON response into result. The query
// string is forwarded verbatim, empty queries included.
func (t *transport) postQuery(ctx context.Context, endpoint, query string, result any) error {
	form := url.Values{"query": {query}}
	body := strings.NewReader(form.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("lattice: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return t.send(req, result)
}

// get issues an HTTP GET to a REST path and decodes the JSON response.
func (t *transport) get(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("lattice: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return t.send(req, result)
}

func (t *transport) send(req *http.Request, result any) error {
	if t.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.authToken)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lattice: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("lattice: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(respBody, resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("lattice: unmarshal response: %w", err)
		}
	}

	return nil
}

// parseErrorResponse maps an error response body into an *Error.
// The service reports errors as {"error": <status>}; anything else is
// carried through as the message.
func parseErrorResponse(body []byte, statusCode int) error {
	code := ErrCodeInvalidRequest
	switch {
	case statusCode == http.StatusNotFound:
		code = ErrCodeNotFound
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		code = ErrCodeTimeout
	case statusCode >= 500:
		code = ErrCodeBackendError
	}

	message := http.StatusText(statusCode)
	var errResp struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil && len(body) > 0 {
		message = fmt.Sprintf("HTTP %d: %s", statusCode, string(body))
	}

	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: statusCode,
	}
}
