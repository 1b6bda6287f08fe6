package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/utils"
	"github.com/pooler-app/pooler/models"
)

const gistFileName = "pooler-reports.json"

// gistStore keeps the whole report collection as the text content of a single
// file inside a private gist. Upload is a full-content replace (PATCH),
// download is a full-content read (GET) followed by parsing the embedded
// JSON document.
type gistStore struct {
	client *utils.HTTPClient

	settings models.SyncSettings
	writer   SettingsWriter

	logger *logger.Logger
}

// NewGistStore constructs the gist-backed [RemoteStore]. A personal access
// token is required; the gist id may be empty, in which case a private gist
// is created on first use and its id is persisted back into the sync
// settings via writer.
func NewGistStore(settings models.SyncSettings, timeout time.Duration, writer SettingsWriter, log *logger.Logger) (RemoteStore, error) {
	if strings.TrimSpace(settings.GistToken) == "" {
		return nil, fmt.Errorf("%w: gist token is required", ErrConfiguration)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL("https://api.github.com").
		SetTimeout(timeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("Authorization", "Bearer "+strings.TrimSpace(settings.GistToken))

	return &gistStore{client: client, settings: settings, writer: writer, logger: log}, nil
}

type gistFile struct {
	Content string `json:"content"`
}

type gistRequest struct {
	Description string              `json:"description,omitempty"`
	Public      *bool               `json:"public,omitempty"`
	Files       map[string]gistFile `json:"files"`
}

type gistResponse struct {
	ID    string              `json:"id"`
	Files map[string]gistFile `json:"files"`
}

// Upload implements [RemoteStore]. It serialises the full snapshot into the
// sync document envelope and PATCHes it over the gist file content.
func (g *gistStore) Upload(ctx context.Context, reports []models.Report) error {
	gistID, err := g.ensureGist(ctx)
	if err != nil {
		return err
	}

	doc := models.SyncDocument{Reports: reports, LastUpdate: time.Now().UnixMilli()}
	content, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode sync document: %w", err)
	}

	body := gistRequest{Files: map[string]gistFile{gistFileName: {Content: string(content)}}}
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Patch("/gists/" + gistID)
	if err != nil {
		return fmt.Errorf("gist upload request: %w", wrapTransport(err))
	}

	return mapHTTPError(resp)
}

// Download implements [RemoteStore]. It reads the gist and parses the sync
// document embedded in the tracked file's content.
func (g *gistStore) Download(ctx context.Context) ([]models.Report, error) {
	gistID, err := g.ensureGist(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.R().
		SetContext(ctx).
		Get("/gists/" + gistID)
	if err != nil {
		return nil, fmt.Errorf("gist download request: %w", wrapTransport(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var gist gistResponse
	if err = json.Unmarshal(resp.Body(), &gist); err != nil {
		return nil, fmt.Errorf("decode gist response: %w", wrapParse(err))
	}

	file, ok := gist.Files[gistFileName]
	if !ok {
		return nil, fmt.Errorf("%w: gist has no %s file", ErrParse, gistFileName)
	}

	var doc models.SyncDocument
	if err = json.Unmarshal([]byte(file.Content), &doc); err != nil {
		return nil, fmt.Errorf("decode sync document: %w", wrapParse(err))
	}

	return doc.Reports, nil
}

// ensureGist lazily provisions the backing gist. When no gist id is
// configured it creates a private gist seeded with an empty document and
// persists the new id into the sync settings.
func (g *gistStore) ensureGist(ctx context.Context) (string, error) {
	if g.settings.GistID != "" {
		return g.settings.GistID, nil
	}

	seed, err := json.Marshal(models.SyncDocument{Reports: []models.Report{}})
	if err != nil {
		return "", fmt.Errorf("encode seed document: %w", err)
	}

	private := false
	body := gistRequest{
		Description: "Pooler report sync",
		Public:      &private,
		Files:       map[string]gistFile{gistFileName: {Content: string(seed)}},
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/gists")
	if err != nil {
		return "", fmt.Errorf("gist create request: %w", wrapTransport(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var gist gistResponse
	if err = json.Unmarshal(resp.Body(), &gist); err != nil {
		return "", fmt.Errorf("decode gist create response: %w", wrapParse(err))
	}
	if gist.ID == "" {
		return "", fmt.Errorf("%w: gist create response has no id", ErrParse)
	}

	g.settings.GistID = gist.ID
	if err = g.writer.SaveSyncSettings(ctx, g.settings); err != nil {
		return "", fmt.Errorf("persist provisioned gist id: %w", err)
	}

	g.logger.Info().Str("gist_id", gist.ID).Msg("provisioned sync gist")
	return gist.ID, nil
}
