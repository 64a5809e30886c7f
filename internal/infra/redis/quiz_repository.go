package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quizpro/internal/app"
	"quizpro/internal/domain"
)

// QuizRepository caches quiz records in Redis in front of a backing store.
// Records are stored as JSON under quiz:{quizID}:record. Writes go to the
// backing store first; completion invalidates the cached copy.
type QuizRepository struct {
	client  *redis.Client
	backing app.QuizStore
	ttl     time.Duration
	sf      singleflight.Group
}

func NewQuizRepository(client *redis.Client, backing app.QuizStore, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client:  client,
		backing: backing,
		ttl:     ttl,
	}
}

func (r *QuizRepository) SaveQuiz(ctx context.Context, record domain.QuizRecord) error {
	if err := r.backing.SaveQuiz(ctx, record); err != nil {
		return err
	}
	r.cache(ctx, record)
	return nil
}

func (r *QuizRepository) LoadQuiz(ctx context.Context, quizID string) (domain.QuizRecord, error) {
	if record, ok := r.cached(ctx, quizID); ok {
		return record, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if record, ok := r.cached(ctx, quizID); ok {
			return record, nil
		}
		record, err := r.backing.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuizRecord{}, err
		}
		r.cache(ctx, record)
		return record, nil
	})
	if err != nil {
		return domain.QuizRecord{}, err
	}
	return result.(domain.QuizRecord), nil
}

func (r *QuizRepository) CompleteQuiz(ctx context.Context, quizID string, answers []domain.Answer, result domain.Result, at time.Time) error {
	err := r.backing.CompleteQuiz(ctx, quizID, answers, result, at)
	if delErr := r.client.Del(ctx, r.recordKey(quizID)).Err(); delErr != nil && err == nil {
		// A stale cached record would hide the completion; surface it.
		return delErr
	}
	return err
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.QuizRecord, bool) {
	raw, err := r.client.Get(ctx, r.recordKey(quizID)).Bytes()
	if err != nil {
		return domain.QuizRecord{}, false
	}
	var record domain.QuizRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.QuizRecord{}, false
	}
	return record, true
}

func (r *QuizRepository) cache(ctx context.Context, record domain.QuizRecord) {
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, r.recordKey(record.Quiz.ID), raw, r.ttlWithJitter()).Err()
}

func (r *QuizRepository) recordKey(quizID string) string {
	return "quiz:" + quizID + ":record"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
