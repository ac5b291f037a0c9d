// Package moderation gates queries through an external safety classifier.
package moderation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/logger"
	"github.com/kailas-cloud/prodask/internal/metrics"
)

// ReasonUnavailable marks a block caused by classifier unreachability rather
// than an unsafe query.
const ReasonUnavailable = "moderation_unavailable"

// Result is the moderation outcome for one query.
type Result struct {
	Allowed bool
	Reason  string
}

// Service wraps the classifier with retry and availability policy.
type Service struct {
	classifier Classifier
	failOpen   bool
}

// New creates a moderation service. failOpen controls behavior when the
// classifier is unreachable: false (the default policy) blocks the query.
func New(classifier Classifier, failOpen bool) *Service {
	return &Service{classifier: classifier, failOpen: failOpen}
}

// Moderate classifies the query. Transient classifier failures (wrapping
// domain.ErrModerationUnavailable) get one immediate retry; deterministic
// errors do not. After that the configured availability policy decides. The
// unavailability outcome is tagged ReasonUnavailable so callers never
// confuse it with a safety block.
func (s *Service) Moderate(ctx context.Context, query string) Result {
	log := logger.FromContext(ctx)

	verdict, err := s.classifier.Classify(ctx, query)
	if err != nil && errors.Is(err, domain.ErrModerationUnavailable) {
		verdict, err = s.classifier.Classify(ctx, query)
	}
	if err != nil {
		metrics.ModerationVerdictsTotal.WithLabelValues("unavailable").Inc()
		if s.failOpen {
			log.Warn("moderation unavailable, failing open", zap.Error(err))
			return Result{Allowed: true, Reason: ReasonUnavailable}
		}
		log.Warn("moderation unavailable, failing closed", zap.Error(err))
		return Result{Allowed: false, Reason: ReasonUnavailable}
	}

	if verdict.Flagged {
		metrics.ModerationVerdictsTotal.WithLabelValues("rejected").Inc()
		log.Info("query rejected by moderation", zap.String("category", verdict.Category))
		return Result{Allowed: false, Reason: verdict.Category}
	}

	metrics.ModerationVerdictsTotal.WithLabelValues("allowed").Inc()
	return Result{Allowed: true}
}
