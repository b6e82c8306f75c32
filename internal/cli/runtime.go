package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/config"
	"daily-quiz-service/internal/content"
	"daily-quiz-service/internal/infra/file"
	"daily-quiz-service/internal/infra/memory"
	pgstore "daily-quiz-service/internal/infra/postgres"
	redisstore "daily-quiz-service/internal/infra/redis"
	"daily-quiz-service/internal/logger"
	"daily-quiz-service/internal/metrics"
	transport "daily-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const serviceName = "daily-quiz"

// runtime holds what every subcommand builds from the config file.
type runtime struct {
	cfg     config.Config
	log     *logrus.Entry
	metrics *metrics.Metrics

	redis *redis.Client
	pool  *pgxpool.Pool
}

func setup(configPath string, logOut io.Writer) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	rt := &runtime{
		cfg: cfg,
		log: logger.New(serviceName, logger.Options{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Output:     logOut,
		}),
		metrics: metrics.New("daily_quiz"),
	}
	if cfg.Redis.Addr != "" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return rt, nil
}

// quiet keeps interactive output readable unless a level is configured.
func (rt *runtime) quiet() {
	if rt.cfg.Log.Level == "" && os.Getenv("LOG_LEVEL") == "" {
		rt.log.Logger.SetLevel(logrus.WarnLevel)
	}
}

func (rt *runtime) Close() {
	if rt.redis != nil {
		rt.redis.Close()
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
}

func (rt *runtime) postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if rt.pool != nil {
		return rt.pool, nil
	}
	if rt.cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("postgres url not configured")
	}
	pool, err := pgxpool.Connect(ctx, rt.cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	rt.pool = pool
	return pool, nil
}

func (rt *runtime) catalog(dir string) (*content.Catalog, error) {
	if dir == "" {
		dir = rt.cfg.Content.Dir
	}
	catalog, err := content.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	rt.log.WithFields(logrus.Fields{"dir": dir, "quizzes": len(catalog.All())}).Debug("content loaded")
	return catalog, nil
}

// quizSource is where the server reads quizzes from: the published
// Postgres table when configured, the content directory otherwise. The same
// source backs both play and the listing endpoints.
func (rt *runtime) quizSource(ctx context.Context) (memory.QuizLoader, transport.QuizIndex, error) {
	if rt.cfg.Postgres.URL != "" {
		pool, err := rt.postgres(ctx)
		if err != nil {
			return nil, nil, err
		}
		loader := pgstore.NewQuizLoader(pool, rt.metrics)
		return loader, loader, nil
	}
	catalog, err := rt.catalog("")
	if err != nil {
		return nil, nil, err
	}
	return catalog, catalog, nil
}

// quizRepository caches loader in Redis when configured, in process otherwise.
func (rt *runtime) quizRepository(loader memory.QuizLoader) app.QuizRepository {
	ttl := config.TTLDuration(rt.cfg.Quiz.TTL, 10*time.Minute)
	if rt.redis != nil {
		return redisstore.NewQuizRepository(rt.redis, loader, ttl)
	}
	return memory.NewQuizRepository(loader, ttl)
}

func (rt *runtime) attemptStore() app.AttemptRepository {
	if rt.redis != nil {
		return redisstore.NewAttemptStore(rt.redis, config.TTLDuration(rt.cfg.Redis.TTL, 10*time.Minute))
	}
	return memory.NewAttemptStore()
}

func (rt *runtime) streakStorage(ctx context.Context) (app.Storage, error) {
	switch rt.cfg.Streak.Backend {
	case config.BackendMemory:
		return memory.NewKVStore(), nil
	case config.BackendRedis:
		if rt.redis == nil {
			return nil, fmt.Errorf("streak backend %q requires redis.addr", config.BackendRedis)
		}
		return redisstore.NewKVStore(rt.redis), nil
	case config.BackendPostgres:
		pool, err := rt.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return pgstore.NewKVStore(pool), nil
	default:
		return file.NewKVStore(rt.cfg.Streak.Dir), nil
	}
}

func (rt *runtime) service(attempts app.AttemptRepository, quizzes app.QuizRepository, storage app.Storage) *app.QuizService {
	return app.NewQuizService(attempts, quizzes, storage,
		app.WithLogger(rt.log),
		app.WithMetrics(rt.metrics),
		app.WithStreakKeyPrefix(rt.cfg.Streak.KeyPrefix),
	)
}
