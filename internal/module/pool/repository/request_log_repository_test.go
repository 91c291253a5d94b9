package repository

import (
	"context"
	"testing"

	"github.com/daubit/tracy-web/internal/database"
	"github.com/daubit/tracy-web/internal/database/schema"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRequestLogRepository() *requestLogRepository {
	cfg := shared.SetupCfg(nil)
	db := database.NewDatabase(cfg, zerolog.Nop())
	redis := shared.NewRedisClient(cfg, zerolog.Nop())
	return newRequestLogRepository(db, redis, zerolog.Nop())
}

func TestInsertLogWithoutStorage(t *testing.T) {
	repo := setupRequestLogRepository()
	repo.start(1)
	defer close(repo.quit)

	err := repo.InsertLog(context.Background(), schema.RequestLog{
		RequestID: "5b7c3c1e-0000-4000-8000-000000000000",
		Endpoint:  "/api/pools",
		Status:    200,
	})
	require.NoError(t, err)
	assert.NoError(t, repo.ProcessQueue())
}

func TestInsertLogDropsWhenQueueIsFull(t *testing.T) {
	repo := setupRequestLogRepository()

	for i := 0; i < cap(repo.taskQueue)+10; i++ {
		require.NoError(t, repo.InsertLog(context.Background(), schema.RequestLog{Endpoint: "/pools"}))
	}
	assert.Len(t, repo.taskQueue, cap(repo.taskQueue))
}
