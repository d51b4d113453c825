package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoStore_PrefijoPorDefecto(t *testing.T) {
	s := NewUndoStoreWithClient(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"}), "", time.Minute)
	t.Cleanup(func() { _ = s.Close() })
	assert.Equal(t, "almacen:undo:s-1", s.key("s-1"))
}

// Un Redis caído es un error; no se confunde con "sin registro".
func TestUndoStore_ServidorCaidoDevuelveError(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewUndoStoreWithClient(client, "test:", 0)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(context.Background(), "s-1")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "leer registro de deshacer")
}
