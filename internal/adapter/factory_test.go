package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

func TestNew_SelectsVariantByMethod(t *testing.T) {
	writer := &captureWriter{}

	tests := []struct {
		name     string
		settings models.SyncSettings
		wantType any
	}{
		{
			name:     "gist",
			settings: models.SyncSettings{Method: models.SyncGist, GistToken: "tok"},
			wantType: &gistStore{},
		},
		{
			name:     "json store",
			settings: models.SyncSettings{Method: models.SyncJSONStore, StoreEndpoint: "store.example.com", StoreSecret: "sec"},
			wantType: &jsonStore{},
		},
		{
			name:     "custom rest",
			settings: models.SyncSettings{Method: models.SyncCustomAPI, APIEndpoint: "api.example.com"},
			wantType: &restStore{},
		},
		{
			name:     "realtime",
			settings: models.SyncSettings{Method: models.SyncRealtime, RealtimeURL: "wss://rt.example.com/reports"},
			wantType: &realtimeStore{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.settings, time.Second, writer, logger.Nop())
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, got)
		})
	}
}

func TestNew_DisabledAndUnknownMethods(t *testing.T) {
	_, err := New(models.SyncSettings{}, time.Second, &captureWriter{}, logger.Nop())
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New(models.SyncSettings{Method: "carrier-pigeon"}, time.Second, &captureWriter{}, logger.Nop())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestOnlyRealtimeImplementsSubscriber(t *testing.T) {
	writer := &captureWriter{}

	gist, err := New(models.SyncSettings{Method: models.SyncGist, GistToken: "tok"}, time.Second, writer, logger.Nop())
	require.NoError(t, err)
	_, ok := gist.(Subscriber)
	assert.False(t, ok)

	rt, err := New(models.SyncSettings{Method: models.SyncRealtime, RealtimeURL: "wss://rt.example.com"}, time.Second, writer, logger.Nop())
	require.NoError(t, err)
	_, ok = rt.(Subscriber)
	assert.True(t, ok)
}
