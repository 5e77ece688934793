package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false}, "hwansaeng", "0.1.0")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProvider_NilSafe(t *testing.T) {
	var p *Provider
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NotNil(t, p.Tracer("test"))
}

func TestNewProvider_Enabled(t *testing.T) {
	// The OTLP HTTP exporter does not dial at construction time, so an
	// unreachable endpoint still yields a usable provider.
	p, err := NewProvider(context.Background(), Config{
		Enabled:    true,
		Endpoint:   "localhost:4318",
		SampleRate: 0.5,
		Insecure:   true,
	}, "hwansaeng", "0.1.0")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NotNil(t, p.Tracer("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}
