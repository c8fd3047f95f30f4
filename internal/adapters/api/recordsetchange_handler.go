package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/poyrazK/cloudDNS/internal/adapters/lock"
	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
	"github.com/poyrazK/cloudDNS/internal/core/services/recordsetchange"
)

// reconcileLeaseTTL bounds how long a reconcile call may hold its per-key
// lease; it must comfortably exceed the verifier's worst-case runtime
// (DefaultVerifyAttempts * DefaultVerifyBackoff).
const reconcileLeaseTTL = 30 * time.Second

// RecordSetChangeAPIHandler exposes the record-set change handler (C4) as an
// internal hand-off point: an upstream dispatcher that already popped and
// validated a pending RecordSetChange posts it here to be driven to a
// terminal state. Accepting and authorizing the original change request is
// that dispatcher's job, not this handler's.
type RecordSetChangeAPIHandler struct {
	handler   *recordsetchange.Handler
	connector ports.DnsConnector
	lease     *lock.RedisLease // nil disables cross-instance mutual exclusion
}

func NewRecordSetChangeAPIHandler(handler *recordsetchange.Handler, connector ports.DnsConnector, lease *lock.RedisLease) *RecordSetChangeAPIHandler {
	return &RecordSetChangeAPIHandler{handler: handler, connector: connector, lease: lease}
}

// RegisterRoutes registers the internal reconciliation route with the given
// ServeMux, gated behind the given auth and admin middleware.
func (h *RecordSetChangeAPIHandler) RegisterRoutes(mux *http.ServeMux, auth func(http.Handler) http.Handler, admin func(http.Handler) http.Handler) {
	mux.Handle("POST /internal/recordset-changes/reconcile", auth(admin(http.HandlerFunc(h.Reconcile))))
}

// Reconcile drives a single already-queued RecordSetChange through
// Validate -> Apply -> Verify -> Persist and reports its terminal state.
//
// When a lease backend is configured, reconcile takes an exclusive lease on
// (zoneId, name, type) for the duration of the run: the upstream dispatcher
// is expected to prevent concurrent delivery of the same key, but a
// per-instance crash-and-redeliver can still race a slow verify loop, and
// the batch fan-out's read-modify-write is only safe with at most one
// writer per key at a time.
func (h *RecordSetChangeAPIHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var change domain.RecordSetChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.lease != nil {
		token, ok, err := h.lease.Acquire(r.Context(), change.Zone.ID, change.RecordSet.Name, string(change.RecordSet.Type), reconcileLeaseTTL)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if !ok {
			http.Error(w, "another reconcile is already in flight for this record set", http.StatusConflict)
			return
		}
		defer func() {
			if errRelease := h.lease.Release(r.Context(), change.Zone.ID, change.RecordSet.Name, string(change.RecordSet.Type), token); errRelease != nil {
				log.Printf("failed to release record set change lease: %v", errRelease)
			}
		}()
	}

	result, err := h.handler.Handle(r.Context(), h.connector, &change)
	if err != nil {
		// InfrastructureError: the caller should treat the change as still
		// Pending and retry delivery later.
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("failed to encode record set change response: %v", err)
	}
}
