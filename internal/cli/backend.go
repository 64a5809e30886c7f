package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"quizpro/internal/app"
	"quizpro/internal/config"
	"quizpro/internal/infra/memory"
	pgstore "quizpro/internal/infra/postgres"
	"quizpro/internal/infra/quizapi"
	redisinfra "quizpro/internal/infra/redis"
)

// backend is the set of collaborators a QuizService runs against.
type backend struct {
	generator app.QuizGenerator
	gateway   app.SubmissionGateway
	sessions  app.SessionRepository
	// submitTimeout bounds one Finalize including gateway retries.
	submitTimeout time.Duration
	// grader is set in local mode, lobby in remote mode.
	grader *app.Grader
	lobby  app.LobbySource
	close  func()
}

func buildBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	var closers []func()
	b := &backend{close: func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	if redisClient != nil {
		b.sessions = redisinfra.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		b.sessions = memory.NewSessionStore()
	}

	if cfg.Gateway.Mode == config.GatewayRemote {
		client := quizapi.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Token, config.TTLDuration(cfg.Gateway.Timeout, 10*time.Second))
		b.generator = client
		b.gateway = client
		b.submitTimeout = client.SubmitBudget()
		b.lobby = client
		return b, nil
	}

	var store app.QuizStore = memory.NewQuizStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, err
		}
		closers = append(closers, pool.Close)
		store = pgstore.NewQuizStore(pool)
	}
	if redisClient != nil {
		store = redisinfra.NewQuizRepository(redisClient, store, config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
	}

	b.grader = app.NewGrader(store, cfg.Quiz.QuestionSeconds)
	b.generator = b.grader
	b.gateway = b.grader
	return b, nil
}

func newService(b *backend, cfg config.Config, opts ...app.Option) *app.QuizService {
	opts = append([]app.Option{
		app.WithQuestionSeconds(cfg.Quiz.QuestionSeconds),
		app.WithSubmitTimeout(submitTimeout(b, cfg)),
	}, opts...)
	return app.NewQuizService(b.sessions, b.generator, b.gateway, opts...)
}

func submitTimeout(b *backend, cfg config.Config) time.Duration {
	if b.submitTimeout > 0 {
		return b.submitTimeout
	}
	return config.TTLDuration(cfg.Gateway.Timeout, 10*time.Second)
}
