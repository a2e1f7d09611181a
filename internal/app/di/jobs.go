package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	archivehandler "kline_service/internal/feature/archive/transport/handler"
	"kline_service/internal/platform/jobstate"
)

// IngestJobName identifies the archive ingest in locks, run history and the scheduler.
const IngestJobName = "ingest"

// NewIngestJob returns run guarded by a Redis lock and recorded in the run history.
// Without Redis, run is returned unchanged and the history is nil.
func NewIngestJob(rdb *redis.Client, run jobstate.RunFunc, lockTTL time.Duration) (jobstate.RunFunc, archivehandler.RunHistory) {
	if rdb == nil {
		return run, nil
	}
	store := jobstate.NewRedisStore(rdb, "jobs")
	return store.Guard(IngestJobName, lockTTL, run), store
}
