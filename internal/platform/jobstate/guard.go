package jobstate

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrLocked は別のインスタンスがジョブのロックを保持している場合に返されます。
var ErrLocked = errors.New("job is already running")

// RunFunc is a job body reporting how many items it processed.
type RunFunc func(ctx context.Context) (int, error)

// Guard はrunをジョブロックの下で実行し、実行結果をRunとして記録します。
// 記録の失敗はログに出力するのみで、ジョブの結果には影響しません。
func (r *RedisStore) Guard(job string, lockTTL time.Duration, run RunFunc) RunFunc {
	return func(ctx context.Context) (int, error) {
		token, err := r.TryLock(ctx, job, lockTTL)
		if err != nil {
			return 0, err
		}
		if token == "" {
			return 0, ErrLocked
		}
		defer func() {
			// ctx may already be canceled when the job is stopped.
			if err := r.Unlock(context.WithoutCancel(ctx), job, token); err != nil {
				slog.Warn("failed to release job lock", "job", job, "error", err)
			}
		}()

		rec := Run{Job: job, StartedAt: time.Now().UTC()}
		n, runErr := run(ctx)
		rec.FinishedAt = time.Now().UTC()
		rec.Processed = n
		if runErr != nil {
			rec.Error = runErr.Error()
		}
		if err := r.Save(context.WithoutCancel(ctx), rec); err != nil {
			slog.Warn("failed to record job run", "job", job, "error", err)
		}
		return n, runErr
	}
}
