package claims

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
)

func newMockedStore(t *testing.T) (*PostgresClaimStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PostgresClaimStore{db: db}, mock
}

func TestPostgresSaveConflictWhenVersionMoved(t *testing.T) {
	store, mock := newMockedStore(t)
	claim := storedClaim("claim-1")
	claim.Version = 2

	mock.ExpectExec(regexp.QuoteMeta("UPDATE claims")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM claims WHERE id = $1")).
		WithArgs("claim-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	err := store.Save(context.Background(), claim, 1)
	if !errors.Is(err, domainClaims.ErrConcurrencyConflict) {
		t.Errorf("expected ErrConcurrencyConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSaveNotFoundWhenRowMissing(t *testing.T) {
	store, mock := newMockedStore(t)
	claim := storedClaim("ghost")
	claim.Version = 2

	mock.ExpectExec(regexp.QuoteMeta("UPDATE claims")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM claims WHERE id = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	err := store.Save(context.Background(), claim, 1)
	if !errors.Is(err, domainClaims.ErrClaimNotFound) {
		t.Errorf("expected ErrClaimNotFound, got %v", err)
	}
}

func TestPostgresSaveSucceedsOnMatchingVersion(t *testing.T) {
	store, mock := newMockedStore(t)
	claim := storedClaim("claim-1")
	claim.Version = 2

	mock.ExpectExec(regexp.QuoteMeta("UPDATE claims")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Save(context.Background(), claim, 1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresNextClaimSequence(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO claim_sequences")).
		WithArgs(2025).
		WillReturnRows(sqlmock.NewRows([]string{"next_value"}).AddRow(int64(7)))

	seq, err := store.NextClaimSequence(context.Background(), 2025)
	if err != nil {
		t.Fatalf("NextClaimSequence failed: %v", err)
	}
	if seq != 7 {
		t.Errorf("expected sequence 7, got %d", seq)
	}
}
