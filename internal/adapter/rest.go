package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/utils"
	"github.com/pooler-app/pooler/models"
)

// restStore talks to a user-operated REST backend:
// POST {endpoint}/reports replaces the collection, GET {endpoint}/reports
// reads it back. The configured token is passed through as a bearer
// credential and never interpreted.
type restStore struct {
	client *utils.HTTPClient

	token string

	logger *logger.Logger
}

// NewRESTStore constructs the custom REST [RemoteStore]. The endpoint is
// required; the bearer token is optional and attached only when present.
func NewRESTStore(settings models.SyncSettings, timeout time.Duration, log *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(settings.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid api endpoint: %v", ErrConfiguration, err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &restStore{client: client, token: strings.TrimSpace(settings.APIToken), logger: log}, nil
}

type restDocument struct {
	Reports []models.Report `json:"reports"`
}

// Upload implements [RemoteStore]. It POSTs the full snapshot to /reports.
func (r *restStore) Upload(ctx context.Context, reports []models.Report) error {
	resp, err := r.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(restDocument{Reports: reports}).
		Post("/reports")
	if err != nil {
		return fmt.Errorf("rest upload request: %w", wrapTransport(err))
	}

	return mapHTTPError(resp)
}

// Download implements [RemoteStore]. It GETs /reports and decodes the
// collection envelope.
func (r *restStore) Download(ctx context.Context) ([]models.Report, error) {
	resp, err := r.authedRequest(ctx).Get("/reports")
	if err != nil {
		return nil, fmt.Errorf("rest download request: %w", wrapTransport(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var doc restDocument
	if err = json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("decode rest response: %w", wrapParse(err))
	}

	return doc.Reports, nil
}

func (r *restStore) authedRequest(ctx context.Context) *resty.Request {
	req := r.client.R().SetContext(ctx)
	if r.token != "" {
		req.SetHeader("Authorization", "Bearer "+r.token)
	}
	return req
}
