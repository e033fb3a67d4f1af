package api

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/huynhanx03/tripwise-api/pkg/store"
)

// newsletterAction persists a signup. A duplicate email reports success with
// the duplicate flag rather than an error; only genuine store failures are
// server errors.
func newsletterAction(st store.Store, log *zap.Logger) func(context.Context, *NewsletterRequest) (NewsletterResponse, error) {
	return func(ctx context.Context, req *NewsletterRequest) (NewsletterResponse, error) {
		sub := &store.Subscription{
			Email: strings.ToLower(strings.TrimSpace(req.Email)),
		}

		created, err := st.SaveSubscription(ctx, sub)
		if err != nil {
			log.Error("subscription save failed", zap.Error(err))
			return NewsletterResponse{}, err
		}

		return NewsletterResponse{Subscribed: true, Duplicate: !created}, nil
	}
}
