package pgrecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamPaprika/hwansaeng"
)

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(hwansaeng.Config{WaitInSeconds: 0, MaxPoolSize: 10})
	assert.ErrorIs(t, err, hwansaeng.ErrInvalidTTL)

	_, err = New(hwansaeng.Config{WaitInSeconds: 5, MaxPoolSize: -1})
	assert.ErrorIs(t, err, hwansaeng.ErrNegativeCap)
}

func TestAcquire_BadDSNPropagates(t *testing.T) {
	p, err := New(hwansaeng.Config{WaitInSeconds: 5, MaxPoolSize: 10},
		hwansaeng.WithName("pg"))
	require.NoError(t, err)

	// pgx rejects a malformed DSN before any network activity.
	conn, release, err := p.Acquire(context.Background(), "this is not a dsn")
	assert.Error(t, err)
	assert.Nil(t, conn)
	assert.Nil(t, release)
	assert.Zero(t, p.Size(), "a failed dial leaves no pool state behind")
}
