package params

import (
	"errors"
	"testing"

	"settings-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *MemoryEngine) {
	t.Helper()
	engine := NewMemoryEngine()
	c := NewClient(engine, logger.Discard())
	require.NoError(t, c.Start())
	return c, engine
}

func TestClientAbsentIsNotError(t *testing.T) {
	c, _ := newTestClient(t)

	v, ok, err := c.Get("Missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)

	s, err := c.GetString("Missing")
	require.NoError(t, err)
	assert.Equal(t, "", s)

	b, err := c.GetBool("Missing")
	require.NoError(t, err)
	assert.False(t, b)
}

func TestClientGetBool(t *testing.T) {
	c, _ := newTestClient(t)

	tests := []struct {
		raw  string
		want bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"1\n", true},
		{"0", false},
		{"", false},
		{"yes", false},
	}
	for _, tt := range tests {
		require.NoError(t, c.PutString("Flag", tt.raw))
		got, err := c.GetBool("Flag")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "raw %q", tt.raw)
	}
}

func TestClientPutBoolEncoding(t *testing.T) {
	c, engine := newTestClient(t)

	require.NoError(t, c.PutBool("IsMetric", true))
	v, _, _ := engine.Get("IsMetric")
	assert.Equal(t, "1", string(v))

	require.NoError(t, c.PutBool("IsMetric", false))
	v, _, _ = engine.Get("IsMetric")
	assert.Equal(t, "0", string(v))
}

func TestClientGetInt(t *testing.T) {
	c, _ := newTestClient(t)

	n, err := c.GetInt(KeyUpdateFailedCount)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, c.PutString(KeyUpdateFailedCount, " 3\n"))
	n, err = c.GetInt(KeyUpdateFailedCount)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, c.PutString(KeyUpdateFailedCount, "many"))
	n, err = c.GetInt(KeyUpdateFailedCount)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestClientIsLocked(t *testing.T) {
	c, _ := newTestClient(t)

	locked, err := c.IsLocked("IsRHD")
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, c.PutBool("IsRHDLock", true))
	locked, err = c.IsLocked("IsRHD")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestClientStoreUnavailable(t *testing.T) {
	c, engine := newTestClient(t)
	engine.Err = errors.New("connection refused")

	_, _, err := c.Get("IsMetric")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = c.GetBool("IsMetric")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = c.GetInt("IsMetric")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, c.PutBool("IsMetric", true), ErrStoreUnavailable)
	assert.ErrorIs(t, c.Remove("IsMetric"), ErrStoreUnavailable)

	_, err = c.IsLocked("IsMetric")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestClientWatchFiltersPaths(t *testing.T) {
	c, _ := newTestClient(t)

	var changes []Change
	c.OnChange(func(ch Change) { changes = append(changes, ch) })

	require.NoError(t, c.PutString(KeyLastUpdateTime, "x"))
	assert.Empty(t, changes, "unwatched paths must not be delivered")

	require.NoError(t, c.Watch(c.PathOf(KeyLastUpdateTime)))
	assert.True(t, c.Watching(c.PathOf(KeyLastUpdateTime)))

	require.NoError(t, c.PutString(KeyLastUpdateTime, "y"))
	require.NoError(t, c.PutString(KeyGitBranch, "release"))
	require.Len(t, changes, 1)
	assert.Equal(t, KeyLastUpdateTime, changes[0].Key)
	assert.Equal(t, "mem://LastUpdateTime", changes[0].Path)

	c.Unwatch(c.PathOf(KeyLastUpdateTime))
	require.NoError(t, c.PutString(KeyLastUpdateTime, "z"))
	assert.Len(t, changes, 1)
}

func TestClientKeys(t *testing.T) {
	c, _ := newTestClient(t)
	require.NoError(t, c.PutString("B", "2"))
	require.NoError(t, c.PutString("A", "1"))

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, keys)
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "IsMetricLock", LockKey(KeyIsMetric))
}
