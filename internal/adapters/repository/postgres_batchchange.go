package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
)

// BatchChangeStore implements ports.BatchChangeRepository against the shared
// batch_changes/single_changes tables. A BatchChange groups the SingleChanges
// a tenant submitted together; each SingleChange tracks back to at most one
// RecordSetChange via record_change_id.
type BatchChangeStore struct {
	db *sql.DB
}

func NewBatchChangeStore(db *sql.DB) *BatchChangeStore {
	return &BatchChangeStore{db: db}
}

// GetBatchChange implements ports.BatchChangeRepository.GetBatchChange,
// returning (nil, nil) when the batch does not exist.
func (s *BatchChangeStore) GetBatchChange(ctx context.Context, id string) (*domain.BatchChange, error) {
	batches, err := s.loadBatches(ctx, `WHERE bc.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}
	return batches[0], nil
}

// FindBatchChangesForSingleChanges resolves every distinct BatchChange that
// owns at least one of the given SingleChange ids.
func (s *BatchChangeStore) FindBatchChangesForSingleChanges(ctx context.Context, singleChangeIDs []string) ([]*domain.BatchChange, error) {
	if len(singleChangeIDs) == 0 {
		return nil, nil
	}
	return s.loadBatches(ctx, `WHERE bc.id IN (
		SELECT DISTINCT batch_change_id FROM single_changes WHERE id = ANY($1)
	)`, singleChangeIDs)
}

// loadBatches selects batch_changes matching whereClause, then eagerly loads
// every owned single_changes row for each, ordered so SaveBatchChange's
// read-modify-write sees a stable slice index.
func (s *BatchChangeStore) loadBatches(ctx context.Context, whereClause string, arg any) ([]*domain.BatchChange, error) {
	query := fmt.Sprintf(`SELECT bc.id, bc.tenant_id, bc.created_timestamp FROM batch_changes bc %s ORDER BY bc.id`, whereClause)
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query batch changes: %w", err)
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var batches []*domain.BatchChange
	for rows.Next() {
		b := &domain.BatchChange{}
		if err := rows.Scan(&b.ID, &b.TenantID, &b.CreatedTimestamp); err != nil {
			return nil, fmt.Errorf("scan batch change: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch changes: %w", err)
	}

	for _, b := range batches {
		changes, err := s.loadSingleChanges(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.Changes = changes
	}
	return batches, nil
}

func (s *BatchChangeStore) loadSingleChanges(ctx context.Context, batchChangeID string) ([]domain.SingleChange, error) {
	query := `SELECT id, zone_id, zone_name, record_name, fqdn, type, ttl, rdata, status,
	                 record_change_id, record_set_id, system_message
	          FROM single_changes WHERE batch_change_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, batchChangeID)
	if err != nil {
		return nil, fmt.Errorf("query single changes for batch %s: %w", batchChangeID, err)
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var changes []domain.SingleChange
	for rows.Next() {
		var sc domain.SingleChange
		var typ, status string
		var recordChangeID, recordSetID, systemMessage sql.NullString
		if err := rows.Scan(&sc.ID, &sc.ZoneID, &sc.ZoneName, &sc.RecordName, &sc.FQDN, &typ, &sc.TTL, &sc.RData, &status,
			&recordChangeID, &recordSetID, &systemMessage); err != nil {
			return nil, fmt.Errorf("scan single change: %w", err)
		}
		sc.Type = domain.RecordType(typ)
		sc.Status = domain.SingleChangeStatus(status)
		sc.RecordChangeID = recordChangeID.String
		sc.RecordSetID = recordSetID.String
		sc.SystemMessage = systemMessage.String
		changes = append(changes, sc)
	}
	return changes, nil
}

// SaveBatchChange implements ports.BatchChangeRepository.SaveBatchChange. It
// writes back only the mutable per-single-change columns the handler owns
// (status, record_change_id, record_set_id, system_message); untouched
// columns are not part of this statement and so cannot drift.
func (s *BatchChangeStore) SaveBatchChange(ctx context.Context, batch *domain.BatchChange) (*domain.BatchChange, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save batch tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, sc := range batch.Changes {
		query := `UPDATE single_changes SET status = $1, record_change_id = $2, record_set_id = $3, system_message = $4
		          WHERE id = $5 AND batch_change_id = $6`
		res, err := tx.ExecContext(ctx, query,
			string(sc.Status), nullable(sc.RecordChangeID), nullable(sc.RecordSetID), nullable(sc.SystemMessage),
			sc.ID, batch.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("update single change %s: %w", sc.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, fmt.Errorf("single change %s not found in batch %s: %w", sc.ID, batch.ID, errSingleChangeNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save batch tx: %w", err)
	}
	return batch, nil
}

var errSingleChangeNotFound = errors.New("single change not found")

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
