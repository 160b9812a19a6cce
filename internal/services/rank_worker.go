package services

import (
	"context"
	"time"

	"planets-be/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnevenColumnFinder lists columns whose task orders are not 1..N.
type UnevenColumnFinder interface {
	UnevenColumns(ctx context.Context) ([]primitive.ObjectID, error)
}

// StartRankRepairWorker periodically compacts columns left uneven by an
// interrupted write. Each compaction is bounded by timeout, which must stay
// below the column lock TTL. The worker stops when ctx is done.
func StartRankRepairWorker(ctx context.Context, interval, timeout time.Duration, finder UnevenColumnFinder, ordered *OrderedTasks) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Log.Info("rank repair worker: shutting down")
				return
			case <-ticker.C:
				RepairRanks(ctx, timeout, finder, ordered)
			}
		}
	}()
}

// RepairRanks runs one repair pass and returns how many columns it rewrote.
func RepairRanks(ctx context.Context, timeout time.Duration, finder UnevenColumnFinder, ordered *OrderedTasks) int {
	log := logger.Log.WithField("worker", "rank_repair")

	uneven, err := finder.UnevenColumns(ctx)
	if err != nil {
		log.WithError(err).Error("listing uneven columns")
		return 0
	}

	repaired := 0
	for _, columnID := range uneven {
		compactCtx, cancel := context.WithTimeout(ctx, timeout)
		n, err := ordered.Compact(compactCtx, columnID)
		cancel()
		if err != nil {
			log.WithError(err).WithField("column_id", columnID.Hex()).Error("compacting column")
			continue
		}
		if n > 0 {
			repaired++
			log.WithFields(logger.Fields{"column_id": columnID.Hex(), "rewritten": n}).Warn("repaired column ranks")
		}
	}
	return repaired
}
