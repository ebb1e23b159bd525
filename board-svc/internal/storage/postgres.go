package storage

import (
	"context"
	"database/sql"
	"fmt"

	"tableboard/board-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const Schema = `
CREATE TABLE IF NOT EXISTS table_bookings (
	branch_id     TEXT        NOT NULL,
	table_id      INTEGER     NOT NULL,
	customer_name TEXT        NOT NULL,
	date_time     TIMESTAMPTZ NOT NULL,
	guest_count   INTEGER     NOT NULL DEFAULT 0,
	notes         TEXT        NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (branch_id, table_id)
);

CREATE TABLE IF NOT EXISTS joined_tables (
	id          UUID        PRIMARY KEY,
	branch_id   TEXT        NOT NULL,
	table_ids   INTEGER[]   NOT NULL,
	label       TEXT        NOT NULL,
	guest_count INTEGER     NOT NULL DEFAULT 0,
	order_count INTEGER     NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

type PostgresReservationStore struct {
	DB       *sql.DB
	BranchID string
}

func NewPostgresReservationStore(db *sql.DB, branchID string) *PostgresReservationStore {
	return &PostgresReservationStore{DB: db, BranchID: branchID}
}

// Add upserts: one reservation per table.
func (r *PostgresReservationStore) Add(ctx context.Context, res domain.Reservation) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO table_bookings (branch_id, table_id, customer_name, date_time, guest_count, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (branch_id, table_id) DO UPDATE
		SET customer_name = EXCLUDED.customer_name,
			date_time = EXCLUDED.date_time,
			guest_count = EXCLUDED.guest_count,
			notes = EXCLUDED.notes,
			created_at = EXCLUDED.created_at
	`, r.BranchID, res.TableID, res.CustomerName, res.DateTime, res.GuestCount, res.Notes, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

func (r *PostgresReservationStore) List(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT table_id, customer_name, date_time, guest_count, notes, created_at
		FROM table_bookings
		WHERE branch_id = $1
		ORDER BY created_at
	`, r.BranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := []domain.Reservation{}
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.TableID, &res.CustomerName, &res.DateTime, &res.GuestCount, &res.Notes, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *PostgresReservationStore) Remove(ctx context.Context, tableID int) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		DELETE FROM table_bookings WHERE branch_id = $1 AND table_id = $2
	`, r.BranchID, tableID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type PostgresJoinedTableStore struct {
	DB       *sql.DB
	BranchID string
}

func NewPostgresJoinedTableStore(db *sql.DB, branchID string) *PostgresJoinedTableStore {
	return &PostgresJoinedTableStore{DB: db, BranchID: branchID}
}

func (r *PostgresJoinedTableStore) Add(ctx context.Context, record domain.JoinedTableRecord) error {
	ids := make([]int64, len(record.TableIDs))
	for i, id := range record.TableIDs {
		ids[i] = int64(id)
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO joined_tables (id, branch_id, table_ids, label, guest_count, order_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, r.BranchID, pq.Array(ids), record.Label, record.GuestCount, record.OrderCount, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save joined tables: %w", err)
	}
	return nil
}

func (r *PostgresJoinedTableStore) List(ctx context.Context) ([]domain.JoinedTableRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, table_ids, label, guest_count, order_count, created_at
		FROM joined_tables
		WHERE branch_id = $1
		ORDER BY created_at
	`, r.BranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.JoinedTableRecord{}
	for rows.Next() {
		var (
			record domain.JoinedTableRecord
			ids    pq.Int64Array
		)
		if err := rows.Scan(&record.ID, &ids, &record.Label, &record.GuestCount, &record.OrderCount, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.TableIDs = make([]int, len(ids))
		for i, id := range ids {
			record.TableIDs[i] = int(id)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *PostgresJoinedTableStore) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		DELETE FROM joined_tables WHERE branch_id = $1 AND id = $2
	`, r.BranchID, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
