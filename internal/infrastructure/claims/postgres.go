package claims

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
)

const pqUniqueViolation = "23505"

// PostgresClaimStore implements ClaimRepository and EventStore on PostgreSQL.
// Layout mirrors SQLiteClaimStore; only placeholders and upsert syntax differ.
type PostgresClaimStore struct {
	db *sql.DB
}

// NewPostgresClaimStore opens a PostgreSQL-backed claim store.
func NewPostgresClaimStore(dsn string) (*PostgresClaimStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open claim database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping claim database: %w", err)
	}

	store := &PostgresClaimStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresClaimStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS claims (
			id TEXT PRIMARY KEY,
			claim_number TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			service_center_id TEXT,
			technician_id TEXT,
			version INTEGER NOT NULL,
			payload JSONB NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
		CREATE INDEX IF NOT EXISTS idx_claims_service_center ON claims(service_center_id);
		CREATE INDEX IF NOT EXISTS idx_claims_technician ON claims(technician_id);

		CREATE TABLE IF NOT EXISTS claim_sequences (
			year INTEGER PRIMARY KEY,
			next_value BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS claim_events (
			id TEXT PRIMARY KEY,
			aggregate_id TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			event_type TEXT NOT NULL,
			version INTEGER NOT NULL,
			payload JSONB,
			actor_id TEXT,
			actor_role TEXT,
			correlation_id TEXT,
			timestamp BIGINT NOT NULL,
			UNIQUE(aggregate_id, version)
		);

		CREATE INDEX IF NOT EXISTS idx_claim_events_aggregate ON claim_events(aggregate_id, version);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Create inserts a new claim row.
func (s *PostgresClaimStore) Create(ctx context.Context, claim *domainClaims.Claim) error {
	payload, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("serialize claim: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claims (id, claim_number, status, service_center_id, technician_id, version, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
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
	if isUniqueViolation(err) {
		return domainClaims.ErrConcurrencyConflict
	}
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// FindByID loads a claim by id.
func (s *PostgresClaimStore) FindByID(ctx context.Context, id string) (*domainClaims.Claim, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM claims WHERE id = $1`, id).Scan(&payload)
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
func (s *PostgresClaimStore) Save(ctx context.Context, claim *domainClaims.Claim, expectedVersion int) error {
	payload, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("serialize claim: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE claims
		SET status = $1, service_center_id = $2, technician_id = $3, version = $4, payload = $5, updated_at = $6
		WHERE id = $7 AND version = $8
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
		if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM claims WHERE id = $1`, claim.ID).Scan(&exists); err == sql.ErrNoRows {
			return domainClaims.ErrClaimNotFound
		}
		return domainClaims.ErrConcurrencyConflict
	}
	return nil
}

// List returns claims matching the filter, most recently updated first.
func (s *PostgresClaimStore) List(ctx context.Context, filter ListFilter) ([]*domainClaims.Claim, error) {
	query := `SELECT payload FROM claims WHERE 1=1`
	args := make([]interface{}, 0, 3)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.ServiceCenterID != "" {
		args = append(args, filter.ServiceCenterID)
		query += fmt.Sprintf(` AND service_center_id = $%d`, len(args))
	}
	if filter.TechnicianID != "" {
		args = append(args, filter.TechnicianID)
		query += fmt.Sprintf(` AND technician_id = $%d`, len(args))
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
func (s *PostgresClaimStore) NextClaimSequence(ctx context.Context, year int) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO claim_sequences (year, next_value) VALUES ($1, 2)
		ON CONFLICT (year) DO UPDATE SET next_value = claim_sequences.next_value + 1
		RETURNING next_value - 1
	`, year).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}
	return next, nil
}

// Append stores one lifecycle event.
func (s *PostgresClaimStore) Append(ctx context.Context, event *domainClaims.ClaimEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("serialize event payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claim_events (id, aggregate_id, aggregate_type, event_type, version, payload, actor_id, actor_role, correlation_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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
	if isUniqueViolation(err) {
		return domainClaims.ErrConcurrencyConflict
	}
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// EventsForClaim returns the audit trail of one claim in version order.
func (s *PostgresClaimStore) EventsForClaim(ctx context.Context, claimID string) ([]*domainClaims.ClaimEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, version, payload, actor_id, actor_role, correlation_id, timestamp
		FROM claim_events
		WHERE aggregate_id = $1
		ORDER BY version ASC
	`, claimID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsMatching returns stored events accepted by the filter.
func (s *PostgresClaimStore) EventsMatching(ctx context.Context, filter domainClaims.EventFilter) ([]*domainClaims.ClaimEvent, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, version, payload, actor_id, actor_role, correlation_id, timestamp
		FROM claim_events WHERE 1=1`
	args := make([]interface{}, 0, 1)
	if filter.AggregateID != "" {
		args = append(args, filter.AggregateID)
		query += fmt.Sprintf(` AND aggregate_id = $%d`, len(args))
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
func (s *PostgresClaimStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	pqErr, ok := err.(*pq.Error)
	return ok && string(pqErr.Code) == pqUniqueViolation
}
