package cache

import (
	"time"

	"kline_service/internal/domain/entity"
)

// TimeUntilNextRefresh は now から次の hour 時（上海時間）までの期間を返します。
// 取引終了後に当日の足が確定するため、その時刻でキャッシュを失効させます。
func TimeUntilNextRefresh(now time.Time, hour int) time.Duration {
	local := now.In(entity.Shanghai)

	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, entity.Shanghai)

	// 当日の更新時刻を過ぎている場合は翌日の同時刻を使用
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(local)
}
