// Package recordsetchange drives a single requested DNS record-set mutation
// from a queued "pending" state to a terminal "complete" or "failed" state,
// reconciling it against a live DNS backend and persisting the outcome into
// both the record-set projection and the user-facing batch it fulfills.
package recordsetchange

import (
	"context"
	"log/slog"
	"time"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
)

// Config tunes the handler's bounded retry behavior. Zero values fall back
// to the spec defaults (N=12 attempts, 100ms backoff).
type Config struct {
	VerifyAttempts int
	VerifyBackoff  time.Duration
}

// OutcomeRecorder receives a terminal outcome for observability. Metrics
// adapters implement this; nil is valid (no-op).
type OutcomeRecorder interface {
	RecordOutcome(outcome string)
	RecordVerifyAttempts(n int)
}

// Handler is the Orchestrator (C4): it drives Validate -> Apply -> Verify ->
// Persist and owns failure routing.
type Handler struct {
	recordSets ports.RecordSetRepository
	changes    ports.RecordChangeRepository
	finalizer  *Finalizer
	batches    *BatchUpdater
	verifier   *Verifier
	logger     *slog.Logger
	metrics    OutcomeRecorder
}

// NewHandler wires the Orchestrator from its collaborating capabilities.
func NewHandler(
	connector ports.DnsConnector,
	recordSets ports.RecordSetRepository,
	changes ports.RecordChangeRepository,
	batches ports.BatchChangeRepository,
	cfg Config,
	metrics OutcomeRecorder,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		recordSets: recordSets,
		changes:    changes,
		finalizer:  NewFinalizer(recordSets, changes),
		batches:    NewBatchUpdater(batches),
		verifier:   NewVerifier(connector, cfg.VerifyAttempts, cfg.VerifyBackoff, metrics, logger),
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle drives change from Pending to a terminal Complete or Failed state
// against connector, persists the outcome, and fans it out to any batch
// sub-changes it fulfills.
//
// Handle never returns an error for DNS-level or classification failures;
// those are encoded in the returned change's Status. It returns a non-nil
// error only for InfrastructureError conditions (spec §7): in that case the
// returned change is nil and the caller must treat the original change as
// still Pending for later redelivery.
func (h *Handler) Handle(ctx context.Context, connector ports.DnsConnector, change *domain.RecordSetChange) (*domain.RecordSetChange, error) {
	bypass, err := ShouldBypass(ctx, change, h.recordSets)
	if err != nil {
		return nil, err
	}

	if bypass {
		return h.applyAndPersist(ctx, connector, change, true)
	}

	status := Classify(ctx, change, connector)
	h.logger.Info("classified record set change", "recordSetChangeId", change.ID, "status", status.Kind)

	switch status.Kind {
	case domain.ProcessingFailure:
		return h.persist(ctx, change, false, status.Message)
	case domain.AlreadyApplied:
		return h.persist(ctx, change, true, "")
	default: // ReadyToApply
		return h.applyAndPersist(ctx, connector, change, false)
	}
}

// applyAndPersist runs APPLY, then (unless skipVerify) VERIFY, then PERSIST.
func (h *Handler) applyAndPersist(ctx context.Context, connector ports.DnsConnector, change *domain.RecordSetChange, skipVerify bool) (*domain.RecordSetChange, error) {
	_, dnsErr := connector.DnsUpdate(ctx, change)
	if dnsErr != nil {
		h.logger.Warn("dns update rejected", "recordSetChangeId", change.ID, "code", dnsErr.Code, "message", dnsErr.Message)
		return h.persist(ctx, change, false, dnsErr.Message)
	}

	if skipVerify {
		return h.persist(ctx, change, true, "")
	}

	outcome := h.verifier.Verify(ctx, change)
	if outcome.Kind == VerifyFailed {
		return h.persist(ctx, change, false, outcome.Message)
	}
	return h.persist(ctx, change, true, "")
}

// persist runs PERSIST: Change-Set Finalizer (C5) followed by the Batch
// Fan-Out Updater (C6).
func (h *Handler) persist(ctx context.Context, change *domain.RecordSetChange, success bool, systemMessage string) (*domain.RecordSetChange, error) {
	if _, err := h.finalizer.Finalize(ctx, change, success, systemMessage); err != nil {
		return nil, err
	}

	if err := h.batches.Update(ctx, change); err != nil {
		return nil, err
	}

	if h.metrics != nil {
		outcome := "failed"
		if success {
			outcome = "complete"
		}
		h.metrics.RecordOutcome(outcome)
	}

	return change, nil
}
