package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levuro/jobqueue/internal/observability"
)

func TestNewProvider_DisabledSkipsExporterSetup(t *testing.T) {
	provider, err := observability.NewProvider(context.Background(), observability.Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.NotNil(t, provider.Metrics.ClaimLatency)
	assert.NotNil(t, provider.Metrics.CleanupBatch)
	assert.NotNil(t, provider.Metrics.QueueDepth)

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestProvider_RecordsInstrumentsWithoutPanicking(t *testing.T) {
	provider, err := observability.NewProvider(context.Background(), observability.Config{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		provider.Metrics.ClaimLatency.Record(ctx, 12.5)
		provider.Metrics.CleanupBatch.Add(ctx, 3)
		provider.Metrics.QueueDepth.Record(ctx, 7)
	})
}
