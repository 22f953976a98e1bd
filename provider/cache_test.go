package provider

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedServesFromCache(t *testing.T) {
	calls := 0
	g := Cached(func() (int, error) {
		calls++
		return 42, nil
	}, time.Hour)

	for i := 0; i < 3; i++ {
		res, err := g()
		require.NoError(t, err)
		assert.Equal(t, 42, res)
	}

	assert.Equal(t, 1, calls)
}

func TestCachedReset(t *testing.T) {
	calls := 0
	g := Cached(func() (int, error) {
		calls++
		return calls, nil
	}, time.Hour)

	_, _ = g()
	ResetCached()

	res, err := g()
	require.NoError(t, err)
	assert.Equal(t, 2, res)
	assert.Equal(t, 2, calls)
}

func TestCachedTransientErrorNotCached(t *testing.T) {
	calls := 0
	g := Cached(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, fmt.Errorf("%w: upstream", api.ErrMustRetry)
		}
		return 42, nil
	}, time.Hour)

	_, err := g()
	assert.ErrorIs(t, err, api.ErrMustRetry)

	res, err := g()
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.Equal(t, 2, calls)
}

func TestCachedAuthErrorNotCached(t *testing.T) {
	calls := 0
	g := Cached(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, fmt.Errorf("%w: status 401", api.ErrAuthFail)
		}
		return 42, nil
	}, time.Hour)

	_, err := g()
	assert.ErrorIs(t, err, api.ErrAuthFail)

	// the auth error must not be served for the cache window- after a
	// re-login the next caller re-queries immediately
	res, err := g()
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.Equal(t, 2, calls)
}

func TestCachedPermanentErrorCached(t *testing.T) {
	calls := 0
	g := Cached(func() (int, error) {
		calls++
		return 0, errors.New("permanent")
	}, time.Hour)

	_, err := g()
	assert.Error(t, err)

	_, err = g()
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
