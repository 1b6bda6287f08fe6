package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pooler-app/pooler/internal/config"
	"github.com/pooler-app/pooler/internal/logger"
)

// NewHandler only stores the pointers it receives, so nil collaborators are
// safe for construction-time tests.

func TestNewHandlers_HTTPAddressConfigured(t *testing.T) {
	cfg := config.Server{HTTPAddress: ":8080"}

	h, err := NewHandlers(nil, nil, cfg, logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, h)
	assert.NotNil(t, h.HTTP)
}

func TestNewHandlers_NoAddresses(t *testing.T) {
	h, err := NewHandlers(nil, nil, config.Server{}, logger.Nop())

	require.Error(t, err)
	assert.Nil(t, h)
}
