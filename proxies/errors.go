package proxies

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/reusee/lud/faults"
)

func connectionError(err error, baseURL string) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return faults.New(faults.KindTransport,
			"timeout talking to %s, the server may be waking up, retry shortly", baseURL)
	}
	return faults.New(faults.KindTransport,
		"cannot reach %s, check that the server is running and server_url is correct: %v", baseURL, err)
}

// chatErrorBody is the structured error of the chat endpoints.
type chatErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func mapErrorCode(code string, message string) error {
	switch code {
	case "auth_failed":
		return faults.New(faults.KindAuth, "invalid credentials, check auth_token")
	case "budget_exceeded":
		return faults.New(faults.KindBudgetExceeded, "credits exhausted, add credits or switch models")
	case "rate_limit", "rate_limited":
		return faults.New(faults.KindRateLimited, "rate limited, wait and retry")
	}
	if message == "" {
		message = code
	}
	return faults.New(faults.KindTransport, "server error: %s", message)
}

func statusFault(status int) faults.Kind {
	switch status {
	case http.StatusUnauthorized:
		return faults.KindAuth
	case http.StatusPaymentRequired:
		return faults.KindBudgetExceeded
	case http.StatusTooManyRequests:
		return faults.KindRateLimited
	}
	return faults.KindTransport
}

// chatError maps a non-200 chat response, preferring the structured
// error code over the HTTP status.
func chatError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var decoded chatErrorBody
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		return mapErrorCode(decoded.Error, decoded.Message)
	}
	return faults.Wrap(statusFault(resp.StatusCode), fmt.Errorf("HTTP %d", resp.StatusCode))
}

// statusError maps a non-200 tool response.
func statusError(resp *http.Response) error {
	io.Copy(io.Discard, resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return faults.New(faults.KindAuth, "authentication failed, check that auth_token matches the server")
	case http.StatusNotFound:
		return faults.New(faults.KindTransport, "endpoint not found, the server may be outdated")
	}
	return faults.New(faults.KindTransport, "server returned HTTP %d", resp.StatusCode)
}
