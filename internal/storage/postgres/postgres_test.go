package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/kingdom/internal/config"
	"github.com/cory-johannsen/kingdom/internal/storage/postgres"
	"github.com/cory-johannsen/kingdom/internal/testutil"
)

func TestPool_Health(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	require.NoError(t, pc.Pool.Health(context.Background(), time.Second))
}

func TestNewPool_UnreachableDatabase(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "kingdom", Password: "kingdom",
		Name: "nowhere", SSLMode: "disable", MaxConns: 1,
	}
	pool, err := postgres.NewPool(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "database nowhere unreachable")
}
