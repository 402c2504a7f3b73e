package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ruangkerja/backend-ruang/internal/activity"
	"github.com/ruangkerja/backend-ruang/internal/config"
	"github.com/ruangkerja/backend-ruang/internal/lock"
	"github.com/ruangkerja/backend-ruang/internal/obs"
	"github.com/ruangkerja/backend-ruang/internal/session"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

const taskSessionSweep = "session:sweep"

// sweepLockKey guards against concurrent sweeps across worker replicas.
const sweepLockKey = "ruang:sweep:lock"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, queries := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	sessions := &session.Service{
		Store:    queries,
		Activity: activity.Recorder{Store: queries, Logger: logger},
	}

	sweeper := sweeper{
		Sessions: sessions,
		Locker:   lock.Locker{R: redisClient},
		LockTTL:  cfg.LockTTL,
		Redis:    redisClient,
		WarnTTL:  time.Duration(cfg.ExpiryWarningMin) * time.Minute,
		Logger:   logger,
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	conn := asynq.RedisClientOpt{Addr: redisOpts.Addr, Password: redisOpts.Password, DB: redisOpts.DB}

	scheduler := asynq.NewScheduler(conn, &asynq.SchedulerOpts{Location: cfg.Location()})
	cronSpec := fmt.Sprintf("@every %s", cfg.SweepInterval)
	if _, err := scheduler.Register(cronSpec, asynq.NewTask(taskSessionSweep, nil)); err != nil {
		logger.Fatal().Err(err).Msg("register sweep schedule")
	}

	srv := asynq.NewServer(conn, asynq.Config{
		Concurrency: 1,
		Logger:      asynqLogger{logger},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(taskSessionSweep, sweeper.Handle)

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error().Err(err).Msg("scheduler stopped")
			stop()
		}
	}()

	go func() {
		<-ctx.Done()
		scheduler.Shutdown()
		srv.Shutdown()
	}()

	logger.Info().Str("interval", cfg.SweepInterval.String()).Msg("worker starting")
	if err := srv.Run(mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
		logger.Error().Err(err).Msg("worker stopped with error")
		return
	}
	logger.Info().Msg("worker shutdown complete")
}

// sweeper expires overdue timed sessions and warns on those close to their
// planned end. Warnings are deduplicated per session through redis so a
// customer is not pinged on every tick.
type sweeper struct {
	Sessions *session.Service
	Locker   lock.Locker
	LockTTL  time.Duration
	Redis    *redis.Client
	WarnTTL  time.Duration
	Logger   zerolog.Logger
}

func (s sweeper) Handle(ctx context.Context, _ *asynq.Task) error {
	err := s.Locker.TryWithLock(ctx, sweepLockKey, s.LockTTL, func(ctx context.Context) error {
		expired, err := s.Sessions.SweepExpired(ctx)
		if err != nil {
			return err
		}
		if len(expired) > 0 {
			s.Logger.Info().Int("count", len(expired)).Msg("expired overdue sessions")
		}

		expiring, err := s.Sessions.ListExpiring(ctx)
		if err != nil {
			return err
		}
		for _, sess := range expiring {
			if !s.markWarned(ctx, sess.ID) {
				continue
			}
			s.Sessions.WarnExpiring(ctx, sess)
		}
		return nil
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		s.Logger.Debug().Msg("sweep already running elsewhere")
		return nil
	}
	return err
}

func (s sweeper) markWarned(ctx context.Context, sessionID int64) bool {
	key := fmt.Sprintf("ruang:sweep:warned:%d", sessionID)
	ok, err := s.Redis.SetNX(ctx, key, "1", s.WarnTTL).Result()
	if err != nil {
		s.Logger.Warn().Err(err).Int64("session_id", sessionID).Msg("warn dedup unavailable")
		return false
	}
	return ok
}

type asynqLogger struct {
	zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.Logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.Logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.Logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.Logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.Logger.Fatal().Msg(fmt.Sprint(args...)) }

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, *store.Queries) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "ruang-worker"
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool, store.New(pool)
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
