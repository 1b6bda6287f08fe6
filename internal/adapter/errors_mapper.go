package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: http %d: %s", ErrAuth, resp.StatusCode(), body)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrTransport, resp.StatusCode(), body)
	}
}

// wrapTransport tags request-level failures (connection refused, timeout)
// with the ErrTransport sentinel so callers can errors.Is them.
func wrapTransport(err error) error {
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func wrapParse(err error) error {
	return fmt.Errorf("%w: %v", ErrParse, err)
}
