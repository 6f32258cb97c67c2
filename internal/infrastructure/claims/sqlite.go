package claims

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
)

// SQLiteStoreConfig configures the SQLite claim store.
type SQLiteStoreConfig struct {
	DatabasePath string
}

// SQLiteClaimStore implements ClaimRepository and EventStore on SQLite. The
// aggregate travels as a JSON payload; the columns that drive filtering and
// concurrency control are lifted out alongside it.
type SQLiteClaimStore struct {
	db *sql.DB
}

// NewSQLiteClaimStore opens (and if needed creates) the claim database.
func NewSQLiteClaimStore(config SQLiteStoreConfig) (*SQLiteClaimStore, error) {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = ".data/claims.db"
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open claim database: %w", err)
	}

	store := &SQLiteClaimStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteClaimStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS claims (
			id TEXT PRIMARY KEY,
			claim_number TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			service_center_id TEXT,
			technician_id TEXT,
			version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
		CREATE INDEX IF NOT EXISTS idx_claims_service_center ON claims(service_center_id);
		CREATE INDEX IF NOT EXISTS idx_claims_technician ON claims(technician_id);

		CREATE TABLE IF NOT EXISTS claim_sequences (
			year INTEGER PRIMARY KEY,
			next_value INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS claim_events (
			id TEXT PRIMARY KEY,
			aggregate_id TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			event_type TEXT NOT NULL,
			version INTEGER NOT NULL,
			payload BLOB,
			actor_id TEXT,
			actor_role TEXT,
			correlation_id TEXT,
			timestamp INTEGER NOT NULL,
			UNIQUE(aggregate_id, version)
		);

		CREATE INDEX IF NOT EXISTS idx_claim_events_aggregate ON claim_events(aggregate_id, version);
		CREATE INDEX IF NOT EXISTS idx_claim_events_type ON claim_events(event_type);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Create inserts a new claim row.
func (s *SQLiteClaimStore) Create(ctx context.Context, claim *domainClaims.Claim) error {
	payload, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("serialize claim: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claims (id, claim_number, status, service_center_id, technician_id, version, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		claim.ID,
		claim.ClaimNumber,
		string(claim.Status),
		claim.ServiceCenterID,
		technicianID(claim),
		claim.Version,
		payload,
		claim.CreatedAt.UnixMilli(),
		claim.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// FindByID loads a claim by id.
func (s *SQLiteClaimStore) FindByID(ctx context.Context, id string) (*domainClaims.Claim, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM claims WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, domainClaims.ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query claim: %w", err)
	}
	return unmarshalClaim(payload)
}

// Save updates the claim row iff the stored version still matches
// expectedVersion.
func (s *SQLiteClaimStore) Save(ctx context.Context, claim *domainClaims.Claim, expectedVersion int) error {
	payload, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("serialize claim: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE claims
		SET status = ?, service_center_id = ?, technician_id = ?, version = ?, payload = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`,
		string(claim.Status),
		claim.ServiceCenterID,
		technicianID(claim),
		claim.Version,
		payload,
		claim.UpdatedAt.UnixMilli(),
		claim.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM claims WHERE id = ?`, claim.ID).Scan(&exists); err == sql.ErrNoRows {
			return domainClaims.ErrClaimNotFound
		}
		return domainClaims.ErrConcurrencyConflict
	}
	return nil
}

// List returns claims matching the filter, most recently updated first.
func (s *SQLiteClaimStore) List(ctx context.Context, filter ListFilter) ([]*domainClaims.Claim, error) {
	query := `SELECT payload FROM claims WHERE 1=1`
	args := make([]interface{}, 0, 3)
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ServiceCenterID != "" {
		query += ` AND service_center_id = ?`
		args = append(args, filter.ServiceCenterID)
	}
	if filter.TechnicianID != "" {
		query += ` AND technician_id = ?`
		args = append(args, filter.TechnicianID)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	result := make([]*domainClaims.Claim, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claim, err := unmarshalClaim(payload)
		if err != nil {
			return nil, err
		}
		result = append(result, claim)
	}
	return result, rows.Err()
}

// NextClaimSequence increments and returns the yearly claim sequence.
func (s *SQLiteClaimStore) NextClaimSequence(ctx context.Context, year int) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sequence transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	err = tx.QueryRowContext(ctx, `SELECT next_value FROM claim_sequences WHERE year = ?`, year).Scan(&next)
	switch {
	case err == sql.ErrNoRows:
		next = 1
		if _, err := tx.ExecContext(ctx, `INSERT INTO claim_sequences (year, next_value) VALUES (?, ?)`, year, next+1); err != nil {
			return 0, fmt.Errorf("init sequence: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("read sequence: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `UPDATE claim_sequences SET next_value = ? WHERE year = ?`, next+1, year); err != nil {
			return 0, fmt.Errorf("advance sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence: %w", err)
	}
	return next, nil
}

// Append stores one lifecycle event. The UNIQUE(aggregate_id, version)
// constraint rejects duplicate versions for the same claim.
func (s *SQLiteClaimStore) Append(ctx context.Context, event *domainClaims.ClaimEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("serialize event payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claim_events (id, aggregate_id, aggregate_type, event_type, version, payload, actor_id, actor_role, correlation_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		string(event.Type),
		event.Version,
		payload,
		event.ActorID,
		string(event.ActorRole),
		event.CorrelationID,
		event.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domainClaims.ErrConcurrencyConflict, err)
	}
	return nil
}

// EventsForClaim returns the audit trail of one claim in version order.
func (s *SQLiteClaimStore) EventsForClaim(ctx context.Context, claimID string) ([]*domainClaims.ClaimEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, version, payload, actor_id, actor_role, correlation_id, timestamp
		FROM claim_events
		WHERE aggregate_id = ?
		ORDER BY version ASC
	`, claimID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsMatching returns stored events accepted by the filter. The aggregate
// and type criteria push down to SQL; time bounds apply in memory.
func (s *SQLiteClaimStore) EventsMatching(ctx context.Context, filter domainClaims.EventFilter) ([]*domainClaims.ClaimEvent, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, version, payload, actor_id, actor_role, correlation_id, timestamp
		FROM claim_events WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if filter.AggregateID != "" {
		query += ` AND aggregate_id = ?`
		args = append(args, filter.AggregateID)
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	result := make([]*domainClaims.ClaimEvent, 0, len(events))
	for _, event := range events {
		if filter.Matches(event) {
			result = append(result, event)
		}
	}
	return result, nil
}

// Close closes the underlying database.
func (s *SQLiteClaimStore) Close() error {
	return s.db.Close()
}

func unmarshalClaim(payload []byte) (*domainClaims.Claim, error) {
	var claim domainClaims.Claim
	if err := json.Unmarshal(payload, &claim); err != nil {
		return nil, fmt.Errorf("deserialize claim: %w", err)
	}
	return &claim, nil
}

func technicianID(claim *domainClaims.Claim) string {
	if claim.AssignedTechnician == nil {
		return ""
	}
	return claim.AssignedTechnician.ID
}
