// Package jobs holds the background schedules of the engine.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/popcornhub/points-api/internal/cache"
	"github.com/popcornhub/points-api/internal/config"
	"github.com/popcornhub/points-api/internal/repository"
	"github.com/popcornhub/points-api/internal/repository/dao"
)

const defaultSchedule = "@hourly"

// Reconciler periodically recomputes every active member's balance from
// the ledger and refreshes the cache, so a stale or evicted entry never
// outlives one cycle.
type Reconciler struct {
	ledgerRepo *repository.LedgerRepository
	cache      cache.BalanceCache
	schedule   string
	cron       *cron.Cron
}

func NewReconciler(db *gorm.DB, balanceCache cache.BalanceCache, conf *config.JobsConfig) *Reconciler {
	schedule := defaultSchedule
	if conf != nil && conf.ReconcileSchedule != "" {
		schedule = conf.ReconcileSchedule
	}

	return &Reconciler{
		ledgerRepo: repository.NewLedgerRepository(dao.NewLedgerDAO(db)),
		cache:      balanceCache,
		schedule:   schedule,
		cron:       cron.New(),
	}
}

func (r *Reconciler) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.runOnce); err != nil {
		return err
	}
	r.cron.Start()

	return nil
}

func (r *Reconciler) Stop() {
	r.cron.Stop()
}

func (r *Reconciler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()

	ids, err := r.ledgerRepo.ActiveMemberIDs(ctx)
	if err != nil {
		zap.L().Error("balance reconciliation failed to list members", zap.Error(err))
		return
	}

	refreshed := 0
	for _, id := range ids {
		balance, err := r.ledgerRepo.Balance(ctx, id)
		if err != nil {
			zap.L().Warn("balance reconciliation skipped member", zap.Uint("memberID", id), zap.Error(err))
			continue
		}
		r.cache.Set(ctx, id, balance)
		refreshed++
	}

	zap.L().Info("balance reconciliation finished",
		zap.Int("members", len(ids)),
		zap.Int("refreshed", refreshed),
		zap.Duration("took", time.Since(start)))
}
