package services

import (
	"context"
	"fmt"

	"richr/internal/budget"
	"richr/internal/core"
	"richr/internal/store"
)

// SubscriptionService owns the subscription lifecycle: create and
// delete only, the materializer does everything in between.
type SubscriptionService struct {
	store store.SubscriptionStore
}

func NewSubscriptionService(st store.SubscriptionStore) *SubscriptionService {
	return &SubscriptionService{store: st}
}

// Create registers a standing obligation. A fresh subscription has an
// empty watermark, so it bills on its first due date.
func (s *SubscriptionService) Create(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if !sub.Bucket.Known() {
		sub.Bucket = budget.Classify(sub.Tag)
	}
	sub.LastPeriod = ""

	created, err := s.store.CreateSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	return created, nil
}

// Delete stops future billing. Transactions already materialized from
// the subscription stay in the log.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSubscription(ctx, id); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionService) List(ctx context.Context) ([]core.Subscription, error) {
	return s.store.ListSubscriptions(ctx)
}
