package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"journal-backend/internal/config"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{Endpoint: "localhost:4318"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_Enabled(t *testing.T) {
	cases := map[string]config.TelemetryConfig{
		"host and port": {Enabled: true, Endpoint: "192.0.2.1:4318", Insecure: true, ServiceName: "test"},
		"url":           {Enabled: true, Endpoint: "http://192.0.2.1:4318", ServiceName: "test"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), cfg)
			require.NoError(t, err)
			// Nothing was recorded, so flushing to the unroutable endpoint is a no-op.
			require.NoError(t, shutdown(context.Background()))
		})
	}
}
