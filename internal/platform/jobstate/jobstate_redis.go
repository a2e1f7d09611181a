// Package jobstate はバックグラウンドジョブの実行履歴を記録し、
// Redisロックで同時に1インスタンスのみがジョブを実行するよう制御します。
package jobstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRunNotFound is returned when a job has no recorded run.
var ErrRunNotFound = errors.New("job run not found")

// historySize is the number of runs kept per job.
const historySize = 20

// runTTL bounds how long run records outlive the job.
const runTTL = 30 * 24 * time.Hour

// Run is the outcome of one job execution.
type Run struct {
	ID         string    `json:"id"`
	Job        string    `json:"job"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Processed  int       `json:"processed"`
	Error      string    `json:"error,omitempty"`
}

// unlockScript deletes the lock only when it is still held by the caller.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisStore はRedisを使った実行履歴とロックの実装です。
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore は新しいRedisStoreインスタンスを生成します。
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "jobs"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// lockKey returns the Redis key for a job lock.
func (r *RedisStore) lockKey(job string) string {
	return fmt.Sprintf("%s:%s:lock", r.prefix, job)
}

// historyKey returns the Redis key for a job's run list, newest first.
func (r *RedisStore) historyKey(job string) string {
	return fmt.Sprintf("%s:%s:runs", r.prefix, job)
}

// TryLock はttlの間ジョブロックを取得し、所有者トークンを返します。
// 他の保持者がいる場合は "" を返します。
func (r *RedisStore) TryLock(ctx context.Context, job string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.lockKey(job), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire %s lock: %w", job, err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Unlock はtokenがまだ所有している場合にのみジョブロックを解放します。
func (r *RedisStore) Unlock(ctx context.Context, job, token string) error {
	if err := unlockScript.Run(ctx, r.client, []string{r.lockKey(job)}, token).Err(); err != nil {
		return fmt.Errorf("release %s lock: %w", job, err)
	}
	return nil
}

// Save prepends run to the job's history and trims it.
func (r *RedisStore) Save(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	key := r.historyKey(run.Job)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, historySize-1)
	pipe.Expire(ctx, key, runTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return nil
}

// History はjobの実行履歴を新しい順に最大limit件返します。壊れたエントリはスキップします。
func (r *RedisStore) History(ctx context.Context, job string, limit int) ([]Run, error) {
	if limit <= 0 || limit > historySize {
		limit = historySize
	}
	raw, err := r.client.LRange(ctx, r.historyKey(job), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	runs := make([]Run, 0, len(raw))
	for _, s := range raw {
		var run Run
		if err := json.Unmarshal([]byte(s), &run); err != nil {
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Last returns the most recent run of job.
func (r *RedisStore) Last(ctx context.Context, job string) (*Run, error) {
	runs, err := r.History(ctx, job, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}
