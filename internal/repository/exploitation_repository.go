// This file defines the Exploitation model and repository methods for CRUD
// and lookup operations. An Exploitation is the top-level tenant-owned
// entity: a farm belonging to exactly one user, subdivided into parcelles.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to compare sentinel values
	"time"
)

// Exploitation represents a farm persisted in the database. Each farm
// belongs to a single user and may contain multiple parcelles.
type Exploitation struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExploitationRepo encapsulates all database queries related to
// exploitations. It depends on a sql.DB connection configured elsewhere.
type ExploitationRepo struct {
	db *sql.DB
}

// NewExploitationRepo constructs an ExploitationRepo with the provided DB
// handle. This allows dependency injection of the database in tests and at
// startup.
func NewExploitationRepo(db *sql.DB) *ExploitationRepo {
	return &ExploitationRepo{db: db}
}

// Create inserts a new exploitation. On success the ID field is populated
// with the auto-generated value and a follow-up SELECT fills the timestamp
// fields so callers receive a fully populated record.
func (r *ExploitationRepo) Create(ctx context.Context, e *Exploitation) error {
	const qInsert = "INSERT INTO exploitations (user_id, name, location) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, e.UserID, e.Name, e.Location)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)

	const qSelect = "SELECT user_id, name, location, created_at, updated_at FROM exploitations WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, e.ID).
		Scan(&e.UserID, &e.Name, &e.Location, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID fetches an exploitation by its ID regardless of owner. Reserved
// for admin call sites that deliberately cross tenant boundaries.
func (r *ExploitationRepo) GetByID(ctx context.Context, id uint64) (*Exploitation, error) {
	const q = "SELECT id, user_id, name, location, created_at, updated_at FROM exploitations WHERE id = ?"
	var e Exploitation
	if err := r.db.QueryRowContext(ctx, q, id).
		Scan(&e.ID, &e.UserID, &e.Name, &e.Location, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetByIDAndOwner fetches an exploitation by id but only if it belongs to
// the specified user. Absent and foreign rows both yield ErrNotFound.
func (r *ExploitationRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*Exploitation, error) {
	const q = "SELECT id, user_id, name, location, created_at, updated_at FROM exploitations WHERE id = ? AND user_id = ?"
	var e Exploitation
	if err := r.db.QueryRowContext(ctx, q, id, userID).
		Scan(&e.ID, &e.UserID, &e.Name, &e.Location, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListByOwner returns all exploitations for a specific user ordered by id.
func (r *ExploitationRepo) ListByOwner(ctx context.Context, userID uint64) ([]*Exploitation, error) {
	const q = `SELECT id, user_id, name, location, created_at, updated_at
	           FROM exploitations WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Exploitation
	for rows.Next() {
		e := new(Exploitation)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Location, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns exploitations across every tenant, optionally restricted
// to an exact location match. Used by the admin platform rollup, where the
// region filter is applied before summing.
func (r *ExploitationRepo) ListAll(ctx context.Context, region string) ([]*Exploitation, error) {
	q := `SELECT id, user_id, name, location, created_at, updated_at FROM exploitations`
	args := []any{}
	if region != "" {
		q += ` WHERE location = ?`
		args = append(args, region)
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Exploitation
	for rows.Next() {
		e := new(Exploitation)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Location, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial update to name/location if the exploitation
// belongs to the provided user. Nil fields keep their stored value.
func (r *ExploitationRepo) Update(ctx context.Context, id, userID uint64, name, location *string) (*Exploitation, error) {
	if err := checkOwner(ctx, r.db, chainExploitation, id, userID); err != nil {
		return nil, err
	}
	const q = `UPDATE exploitations
	           SET name = COALESCE(?, name), location = COALESCE(?, location)
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, name, location, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// DeleteByIDAndOwner removes an exploitation and all dependent records
// (parcelles, cultures, charges and recoltes) provided it belongs to the
// specified user. The deletion occurs within a transaction to maintain
// integrity: a crash mid-cascade must not leave orphaned children.
func (r *ExploitationRepo) DeleteByIDAndOwner(ctx context.Context, id, userID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if err = checkOwner(ctx, tx, chainExploitation, id, userID); err != nil {
		return err
	}
	// Cascade delete: recoltes and charges first, then cultures, parcelles
	// and finally the exploitation itself.
	if _, err = tx.ExecContext(ctx,
		`DELETE rc FROM recoltes rc
		 JOIN cultures c ON c.id = rc.culture_id
		 JOIN parcelles p ON p.id = c.parcelle_id
		 WHERE p.exploitation_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE ch FROM charges ch
		 JOIN cultures c ON c.id = ch.culture_id
		 JOIN parcelles p ON p.id = c.parcelle_id
		 WHERE p.exploitation_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE c FROM cultures c
		 JOIN parcelles p ON p.id = c.parcelle_id
		 WHERE p.exploitation_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM parcelles WHERE exploitation_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM exploitations WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
