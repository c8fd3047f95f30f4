package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
)

// RecordSetChangeStore persists RecordSetChange/ChangeSet state into the same
// Postgres instance the rest of the platform uses, reusing
// PostgresRepository's *sql.DB connection pool.
//
// record_set_changes stores one row per RecordSetChange (the row is
// idempotent by id, matching the apply/save contracts in spec §6); the
// record set and "from" image are stored as jsonb since their shape varies
// by record type.
type RecordSetChangeStore struct {
	db *sql.DB
}

func NewRecordSetChangeStore(db *sql.DB) *RecordSetChangeStore {
	return &RecordSetChangeStore{db: db}
}

// Apply implements ports.RecordSetRepository.Apply: it upserts the
// authoritative record-set projection for every change in the set.
func (s *RecordSetChangeStore) Apply(ctx context.Context, cs *domain.ChangeSet) (*domain.ChangeSet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin apply tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, change := range cs.Changes {
		recordsJSON, errMarshal := json.Marshal(change.RecordSet.Records)
		if errMarshal != nil {
			return nil, fmt.Errorf("marshal record set %s: %w", change.RecordSet.ID, errMarshal)
		}

		query := `INSERT INTO record_sets (id, zone_id, name, type, ttl, class, status, records)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		          ON CONFLICT (zone_id, name, type) DO UPDATE SET
		              id = EXCLUDED.id, ttl = EXCLUDED.ttl, status = EXCLUDED.status, records = EXCLUDED.records`
		if _, err := tx.ExecContext(ctx, query,
			change.RecordSet.ID, change.Zone.ID, change.RecordSet.Name, string(change.RecordSet.Type),
			change.RecordSet.TTL, classOrDefault(change.RecordSet.Class), string(change.RecordSet.Status), recordsJSON,
		); err != nil {
			return nil, fmt.Errorf("upsert record set %s: %w", change.RecordSet.ID, err)
		}

		if change.RecordSet.Status == domain.RecordSetInactive && change.ChangeType == domain.ChangeDelete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM record_sets WHERE zone_id = $1 AND name = $2 AND type = $3`,
				change.Zone.ID, change.RecordSet.Name, string(change.RecordSet.Type)); err != nil {
				return nil, fmt.Errorf("delete record set %s: %w", change.RecordSet.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit apply tx: %w", err)
	}
	return cs, nil
}

func classOrDefault(class string) string {
	if class == "" {
		return "IN"
	}
	return class
}

// GetRecordSets implements ports.RecordSetRepository.GetRecordSets, backing
// the Wildcard/NS Bypass Rule's repository lookup (spec §4.2).
func (s *RecordSetChangeStore) GetRecordSets(ctx context.Context, zoneID, name string, rtype domain.RecordType) ([]domain.RecordSet, error) {
	query := `SELECT id, zone_id, name, type, ttl, class, status, records FROM record_sets
	          WHERE zone_id = $1 AND LOWER(name) = LOWER($2) AND type = $3`
	rows, err := s.db.QueryContext(ctx, query, zoneID, name, string(rtype))
	if err != nil {
		return nil, fmt.Errorf("query record sets: %w", err)
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var out []domain.RecordSet
	for rows.Next() {
		var rs domain.RecordSet
		var recordsJSON []byte
		var typ, status string
		if err := rows.Scan(&rs.ID, &rs.ZoneID, &rs.Name, &typ, &rs.TTL, &rs.Class, &status, &recordsJSON); err != nil {
			return nil, fmt.Errorf("scan record set: %w", err)
		}
		rs.Type = domain.RecordType(typ)
		rs.Status = domain.RecordSetStatus(status)
		if err := json.Unmarshal(recordsJSON, &rs.Records); err != nil {
			return nil, fmt.Errorf("unmarshal rdata for record set %s: %w", rs.ID, err)
		}
		out = append(out, rs)
	}
	return out, nil
}

// Save implements ports.RecordChangeRepository.Save: it appends the change
// set to the audit log, idempotent by change id.
func (s *RecordSetChangeStore) Save(ctx context.Context, cs *domain.ChangeSet) (*domain.ChangeSet, error) {
	for _, change := range cs.Changes {
		recordSetJSON, err := json.Marshal(change.RecordSet)
		if err != nil {
			return nil, fmt.Errorf("marshal record set for change %s: %w", change.ID, err)
		}

		var updatesJSON []byte
		if change.Updates != nil {
			if updatesJSON, err = json.Marshal(change.Updates); err != nil {
				return nil, fmt.Errorf("marshal updates image for change %s: %w", change.ID, err)
			}
		}

		query := `INSERT INTO record_set_changes
		              (id, change_set_id, zone_id, change_type, status, system_message, record_set, updates, created_timestamp)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		          ON CONFLICT (id) DO UPDATE SET
		              status = EXCLUDED.status, system_message = EXCLUDED.system_message,
		              record_set = EXCLUDED.record_set, updates = EXCLUDED.updates`
		if _, err := s.db.ExecContext(ctx, query,
			change.ID, cs.ID, cs.ZoneID, string(change.ChangeType), string(change.Status), change.SystemMessage,
			recordSetJSON, updatesJSON, change.CreatedTimestamp,
		); err != nil {
			return nil, fmt.Errorf("save record change %s: %w", change.ID, err)
		}
	}
	return cs, nil
}
