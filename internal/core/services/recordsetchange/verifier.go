package recordsetchange

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
)

// DefaultVerifyAttempts and DefaultVerifyBackoff are the spec's N=12 / 100ms
// defaults (§4.3).
const (
	DefaultVerifyAttempts = 12
	DefaultVerifyBackoff  = 100 * time.Millisecond
)

// VerifyOutcomeKind is the tag of a Verifier result.
type VerifyOutcomeKind string

const (
	VerifyComplete VerifyOutcomeKind = "Complete"
	VerifyFailed   VerifyOutcomeKind = "Failed"
)

// VerifyOutcome is the result of a Verifier run.
type VerifyOutcome struct {
	Kind    VerifyOutcomeKind
	Message string
}

// Verifier confirms via bounded retry polling that DNS now reflects the
// intended post-state of a RecordSetChange (C3).
type Verifier struct {
	connector ports.DnsConnector
	attempts  int
	backoff   backoff.BackOff
	logger    *slog.Logger
	metrics   OutcomeRecorder
}

// NewVerifier builds a Verifier with the given attempt bound and fixed
// backoff, defaulting both to the spec's N=12 / 100ms when zero. metrics may
// be nil.
func NewVerifier(connector ports.DnsConnector, attempts int, wait time.Duration, metrics OutcomeRecorder, logger *slog.Logger) *Verifier {
	if attempts <= 0 {
		attempts = DefaultVerifyAttempts
	}
	if wait <= 0 {
		wait = DefaultVerifyBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		connector: connector,
		attempts:  attempts,
		backoff:   backoff.NewConstantBackOff(wait),
		logger:    logger,
		metrics:   metrics,
	}
}

// Verify runs up to Verifier.attempts classification attempts, sleeping
// Verifier's backoff between them, and reports whether DNS converged on the
// change's intended post-state.
func (v *Verifier) Verify(ctx context.Context, change *domain.RecordSetChange) VerifyOutcome {
	v.backoff.Reset()

	for attempt := 1; attempt <= v.attempts; attempt++ {
		status := Classify(ctx, change, v.connector)

		switch status.Kind {
		case domain.AlreadyApplied:
			v.recordAttempts(attempt)
			return VerifyOutcome{Kind: VerifyComplete}
		case domain.ProcessingFailure:
			v.logger.Warn("verify observed a classification failure, aborting early",
				"recordSetChangeId", change.ID, "attempt", attempt, "error", status.Message)
			v.recordAttempts(attempt)
			return VerifyOutcome{Kind: VerifyFailed, Message: status.Message}
		}

		if attempt == v.attempts {
			break
		}

		wait := v.backoff.NextBackOff()
		select {
		case <-ctx.Done():
			v.recordAttempts(attempt)
			return VerifyOutcome{Kind: VerifyFailed, Message: ctx.Err().Error()}
		case <-time.After(wait):
		}
	}

	v.recordAttempts(v.attempts)
	msg := fmt.Sprintf("verification did not observe expected state for record set %s (%s) after %d attempts",
		change.RecordSet.ID, change.RecordSet.Name, v.attempts)
	return VerifyOutcome{Kind: VerifyFailed, Message: msg}
}

func (v *Verifier) recordAttempts(n int) {
	if v.metrics != nil {
		v.metrics.RecordVerifyAttempts(n)
	}
}
