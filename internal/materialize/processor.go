package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"richr/internal/core"
	"richr/internal/store"
)

// defaultApplyLimit bounds how many effect pairs are applied
// concurrently. Each pair is independently atomic, so there is no
// cross-subscription ordering to preserve.
const defaultApplyLimit = 4

// Processor runs one materialization pass: plan against a snapshot,
// then apply each effect pair through the store's conditional commit.
type Processor struct {
	store      store.SubscriptionStore
	applyLimit int
}

func NewProcessor(s store.SubscriptionStore) *Processor {
	return &Processor{store: s, applyLimit: defaultApplyLimit}
}

// Run materializes everything due on the given date and returns how
// many transactions were committed.
//
// A store.ErrConflict from a commit means a concurrent invocation
// already billed that subscription's period; it is logged and counted
// as handled, never retried. Any other store error aborts the pass:
// pairs already committed stay valid, and the next trigger picks up
// whatever is still pending.
func (p *Processor) Run(ctx context.Context, today core.Date) (int, error) {
	subs, err := p.store.ListSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	effects := Plan(subs, today)
	slog.InfoContext(ctx, "Materializing due subscriptions",
		"total_subscriptions", len(subs),
		"due", len(effects),
		"date", today.String())

	var committed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.applyLimit)
	for _, eff := range effects {
		g.Go(func() error {
			created, err := p.store.CommitMaterialization(ctx, eff.SubscriptionID, eff.PrevPeriod, eff.NewPeriod, eff.Create)
			if errors.Is(err, store.ErrConflict) {
				slog.InfoContext(ctx, "Period already billed by a concurrent run",
					"subscription_id", eff.SubscriptionID,
					"period", eff.NewPeriod.String())
				return nil
			}
			if err != nil {
				return fmt.Errorf("commit subscription %s period %s: %w", eff.SubscriptionID, eff.NewPeriod, err)
			}

			committed.Add(1)
			slog.InfoContext(ctx, "Materialized subscription",
				"subscription_id", eff.SubscriptionID,
				"transaction_id", created.ID,
				"period", eff.NewPeriod.String(),
				"amount", created.Amount.String())
			return nil
		})
	}

	err = g.Wait()
	slog.InfoContext(ctx, "Materialization pass complete",
		"committed", committed.Load(),
		"due", len(effects))
	return int(committed.Load()), err
}
