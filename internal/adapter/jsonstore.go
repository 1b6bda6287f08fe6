package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/utils"
	"github.com/pooler-app/pooler/models"
)

// jsonStore talks to a JSONBin-style document store: the whole collection is
// one document addressed by (endpoint, bin id), replaced on upload and read
// from the "latest" path on download. Auth is a static secret header.
type jsonStore struct {
	client *utils.HTTPClient

	settings models.SyncSettings
	writer   SettingsWriter

	logger *logger.Logger
}

// NewJSONStore constructs the JSON-store [RemoteStore]. Endpoint and secret
// are required; the bin id may be empty and is provisioned lazily.
func NewJSONStore(settings models.SyncSettings, timeout time.Duration, writer SettingsWriter, log *logger.Logger) (RemoteStore, error) {
	if strings.TrimSpace(settings.StoreSecret) == "" {
		return nil, fmt.Errorf("%w: json store secret is required", ErrConfiguration)
	}
	baseURL, err := normalizeBaseURL(settings.StoreEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid json store endpoint: %v", ErrConfiguration, err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("X-Master-Key", strings.TrimSpace(settings.StoreSecret))

	return &jsonStore{client: client, settings: settings, writer: writer, logger: log}, nil
}

// normalizeBaseURL validates raw as a usable base URL, defaulting the scheme
// to https for bare hosts.
func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Upload implements [RemoteStore]. It replaces the remote document with the
// full snapshot via PUT {endpoint}/b/{binID}.
func (j *jsonStore) Upload(ctx context.Context, reports []models.Report) error {
	binID, err := j.ensureBin(ctx)
	if err != nil {
		return err
	}

	doc := models.SyncDocument{Reports: reports, LastUpdate: time.Now().UnixMilli()}
	resp, err := j.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc).
		Put("/b/" + binID)
	if err != nil {
		return fmt.Errorf("json store upload request: %w", wrapTransport(err))
	}

	return mapHTTPError(resp)
}

// Download implements [RemoteStore]. It reads the latest document revision
// from GET {endpoint}/b/{binID}/latest.
func (j *jsonStore) Download(ctx context.Context) ([]models.Report, error) {
	binID, err := j.ensureBin(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := j.client.R().
		SetContext(ctx).
		Get("/b/" + binID + "/latest")
	if err != nil {
		return nil, fmt.Errorf("json store download request: %w", wrapTransport(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var doc models.SyncDocument
	if err = json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("decode sync document: %w", wrapParse(err))
	}

	return doc.Reports, nil
}

type jsonStoreCreateResponse struct {
	ID       string `json:"id"`
	Metadata struct {
		ID string `json:"id"`
	} `json:"metadata"`
}

// ensureBin lazily provisions the remote bin. When no bin id is configured
// it creates a private bin seeded with an empty document and persists the
// new id into the sync settings.
func (j *jsonStore) ensureBin(ctx context.Context) (string, error) {
	if j.settings.StoreBinID != "" {
		return j.settings.StoreBinID, nil
	}

	resp, err := j.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Bin-Private", "true").
		SetBody(models.SyncDocument{Reports: []models.Report{}}).
		Post("/b")
	if err != nil {
		return "", fmt.Errorf("json store create request: %w", wrapTransport(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var created jsonStoreCreateResponse
	if err = json.Unmarshal(resp.Body(), &created); err != nil {
		return "", fmt.Errorf("decode json store create response: %w", wrapParse(err))
	}

	binID := created.Metadata.ID
	if binID == "" {
		binID = created.ID
	}
	if binID == "" {
		return "", fmt.Errorf("%w: json store create response has no bin id", ErrParse)
	}

	j.settings.StoreBinID = binID
	if err = j.writer.SaveSyncSettings(ctx, j.settings); err != nil {
		return "", fmt.Errorf("persist provisioned bin id: %w", err)
	}

	j.logger.Info().Str("bin_id", binID).Msg("provisioned sync bin")
	return binID, nil
}
