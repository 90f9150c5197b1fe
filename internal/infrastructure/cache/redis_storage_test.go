package cache

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere un Redis real en TEST_REDIS_ADDR; sin la variable se omite.
func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR no definido")
	}
	prefix := "lumberyard-test:" + uuid.New().String() + ":"
	s, err := NewRedisStorage(addr, "", 0, prefix)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	val, err := s.Get("falta")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("k1", []byte(`{"status":201}`), time.Minute))
	val, err = s.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, `{"status":201}`, string(val))

	require.NoError(t, s.Delete("k1"))
	val, err = s.Get("k1")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("k2", []byte("a"), 0))
	require.NoError(t, s.Set("k3", []byte("b"), 0))
	require.NoError(t, s.Reset())
	val, err = s.Get("k2")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStorage_ClaveVaciaNoOp(t *testing.T) {
	s := &RedisStorage{prefix: "x:"}
	val, err := s.Get("")
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, s.Set("", []byte("v"), 0))
	assert.NoError(t, s.Set("k", nil, 0))
	assert.NoError(t, s.Delete(""))
}
