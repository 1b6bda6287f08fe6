// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Pooler Authors

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

func newTestRESTStore(t *testing.T, serverURL, token string) RemoteStore {
	t.Helper()

	settings := models.SyncSettings{APIEndpoint: serverURL, APIToken: token}
	s, err := NewRESTStore(settings, 2*time.Second, logger.Nop())
	require.NoError(t, err)
	return s
}

func TestNewRESTStore_MissingEndpoint(t *testing.T) {
	_, err := NewRESTStore(models.SyncSettings{}, time.Second, logger.Nop())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRESTStore_Upload_BearerToken(t *testing.T) {
	var gotDoc restDocument

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reports", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newTestRESTStore(t, srv.URL, "sekrit")

	require.NoError(t, s.Upload(context.Background(), []models.Report{{ID: "r1"}, {ID: "r2"}}))
	assert.Len(t, gotDoc.Reports, 2)
}

func TestRESTStore_Upload_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newTestRESTStore(t, srv.URL, "")

	require.NoError(t, s.Upload(context.Background(), nil))
}

func TestRESTStore_Download_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/reports", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(restDocument{Reports: []models.Report{{ID: "r1"}}})
	}))
	defer srv.Close()

	s := newTestRESTStore(t, srv.URL, "sekrit")
	got, err := s.Download(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestRESTStore_Download_ServerErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newTestRESTStore(t, srv.URL, "")
	_, err := s.Download(context.Background())

	assert.ErrorIs(t, err, ErrTransport)
}

func TestRESTStore_Download_GarbageBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	s := newTestRESTStore(t, srv.URL, "")
	_, err := s.Download(context.Background())

	assert.ErrorIs(t, err, ErrParse)
}
