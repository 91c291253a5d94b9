package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daubit/tracy-web/internal/database"
	"github.com/daubit/tracy-web/internal/database/schema"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	logQueueKey          = "logs:queue"
	logInsertBatchSize   = 1000
	logMaxRetries        = 3
	logRetryDelay        = 2 * time.Second
	logLockKey           = "lock:logs_queue"
	logLockTTL           = 15 * time.Second
	logLockRetryInterval = 1 * time.Second
	logLockRetryCount    = 3
	logWorkerCount       = 4
)

type RequestLogRepository interface {
	InsertLog(ctx context.Context, log schema.RequestLog) error
	ProcessQueue() error
}

// requestLogRepository queues logs in redis and flushes them to postgres from
// the scheduler. Without redis logs go straight to postgres; without postgres
// they are only written to the application log.
type requestLogRepository struct {
	db          *database.Database
	redisClient *shared.RedisClient
	logger      zerolog.Logger
	taskQueue   chan func() error
	quit        chan struct{}
}

func NewRequestLogRepository(lc fx.Lifecycle, db *database.Database, redisClient *shared.RedisClient, logger zerolog.Logger) RequestLogRepository {
	repo := newRequestLogRepository(db, redisClient, logger)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			repo.start(logWorkerCount)
			return nil
		},
		OnStop: func(context.Context) error {
			close(repo.quit)
			return nil
		},
	})
	return repo
}

func newRequestLogRepository(db *database.Database, redisClient *shared.RedisClient, logger zerolog.Logger) *requestLogRepository {
	return &requestLogRepository{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		taskQueue:   make(chan func() error, 1000),
		quit:        make(chan struct{}),
	}
}

func (r *requestLogRepository) start(workers int) {
	for i := 0; i < workers; i++ {
		go r.worker()
	}
}

func (r *requestLogRepository) worker() {
	for {
		select {
		case task := <-r.taskQueue:
			if err := task(); err != nil {
				r.logger.Error().Err(err).Msg("Failed to execute task")
			}
		case <-r.quit:
			return
		}
	}
}

// InsertLog never blocks the request; a full queue drops the log.
func (r *requestLogRepository) InsertLog(ctx context.Context, log schema.RequestLog) error {
	task := func() error {
		if r.redisClient.Enabled() {
			data, err := json.Marshal(log)
			if err != nil {
				return err
			}
			return r.redisClient.RPush(context.WithoutCancel(ctx), logQueueKey, data)
		}
		if r.db.Connected() {
			return r.insertLogs([]schema.RequestLog{log})
		}
		r.logger.Debug().
			Str("request_id", log.RequestID).
			Str("endpoint", log.Endpoint).
			Int("status", log.Status).
			Int64("execution_time", log.ExecutionTime).
			Msg("request")
		return nil
	}

	select {
	case r.taskQueue <- task:
		return nil
	default:
		r.logger.Debug().Msg("InsertLog task queue is full")
		return nil
	}
}

func (r *requestLogRepository) ProcessQueue() error {
	if !r.redisClient.Enabled() || !r.db.Connected() {
		return nil
	}

	for attempt := 1; attempt <= logLockRetryCount; attempt++ {
		if r.redisClient.AcquireLock(logLockKey, logLockTTL) {
			defer r.redisClient.ReleaseLock(logLockKey)
			return r.flushQueue()
		}
		time.Sleep(logLockRetryInterval)
	}

	return fmt.Errorf("failed to acquire lock after %d attempts", logLockRetryCount)
}

func (r *requestLogRepository) flushQueue() error {
	logsData, err := r.redisClient.PopAll(context.Background(), logQueueKey)
	if err != nil {
		return err
	}
	r.logger.Debug().Msgf("request_logs flushQueue len: %d", len(logsData))
	if len(logsData) == 0 {
		return nil
	}

	logs := make([]schema.RequestLog, 0, len(logsData))
	for _, logData := range logsData {
		var log schema.RequestLog
		if err := json.Unmarshal([]byte(logData), &log); err != nil {
			r.logger.Warn().Err(err).Msg("Dropping undecodable request log")
			continue
		}
		logs = append(logs, log)
	}

	for attempt := 1; attempt <= logMaxRetries; attempt++ {
		err = r.insertLogs(logs)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msgf("Failed to insert request logs, retrying (%d/%d)", attempt, logMaxRetries)
		time.Sleep(logRetryDelay)
	}
	return err
}

func (r *requestLogRepository) insertLogs(logs []schema.RequestLog) error {
	for i := 0; i < len(logs); i += logInsertBatchSize {
		end := i + logInsertBatchSize
		if end > len(logs) {
			end = len(logs)
		}
		batch := logs[i:end]

		tx := r.db.DB.Begin()
		if err := tx.Create(&batch).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}
	}
	return nil
}
