package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Parcelle represents a plot of land within an exploitation. The area is
// recorded in hectares and must be positive; the handler layer rejects
// non-numeric input before it reaches this repository.
type Parcelle struct {
	ID             uint64    `json:"id"`
	ExploitationID uint64    `json:"exploitationId"`
	Name           string    `json:"name"`
	Area           float64   `json:"area"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ParcelleRepo provides methods to create and retrieve parcelles.
type ParcelleRepo struct {
	db *sql.DB
}

// NewParcelleRepo constructs a ParcelleRepo with the given DB handle.
func NewParcelleRepo(db *sql.DB) *ParcelleRepo {
	return &ParcelleRepo{db: db}
}

const parcelleCols = "p.id, p.exploitation_id, p.name, p.area, p.created_at, p.updated_at"

func scanParcelle(row interface{ Scan(...any) error }, p *Parcelle) error {
	return row.Scan(&p.ID, &p.ExploitationID, &p.Name, &p.Area, &p.CreatedAt, &p.UpdatedAt)
}

// Create inserts a new parcelle. The caller must already have verified that
// the parent exploitation belongs to the acting user.
func (r *ParcelleRepo) Create(ctx context.Context, p *Parcelle) error {
	const qInsert = "INSERT INTO parcelles (exploitation_id, name, area) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, p.ExploitationID, p.Name, p.Area)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	const qSelect = "SELECT " + parcelleCols + " FROM parcelles p WHERE p.id = ?"
	return scanParcelle(r.db.QueryRowContext(ctx, qSelect, p.ID), p)
}

// GetByIDAndOwner fetches a parcelle by id but only if its ownership chain
// resolves to the specified user.
func (r *ParcelleRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*Parcelle, error) {
	const q = `SELECT ` + parcelleCols + ` FROM parcelles p
	           JOIN exploitations e ON e.id = p.exploitation_id
	           WHERE p.id = ? AND e.user_id = ?`
	var p Parcelle
	if err := scanParcelle(r.db.QueryRowContext(ctx, q, id, userID), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByOwner returns all parcelles whose ownership chain resolves to the
// user. When exploitationID is non-zero the result is restricted to that
// exploitation; callers must verify the exploitation is owned first.
func (r *ParcelleRepo) ListByOwner(ctx context.Context, userID, exploitationID uint64) ([]*Parcelle, error) {
	q := `SELECT ` + parcelleCols + ` FROM parcelles p
	      JOIN exploitations e ON e.id = p.exploitation_id
	      WHERE e.user_id = ?`
	args := []any{userID}
	if exploitationID != 0 {
		q += ` AND p.exploitation_id = ?`
		args = append(args, exploitationID)
	}
	q += ` ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Parcelle
	for rows.Next() {
		p := new(Parcelle)
		if err := scanParcelle(rows, p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial update to name/area after re-checking ownership.
// Nil fields keep their stored value.
func (r *ParcelleRepo) Update(ctx context.Context, id, userID uint64, name *string, area *float64) (*Parcelle, error) {
	if err := checkOwner(ctx, r.db, chainParcelle, id, userID); err != nil {
		return nil, err
	}
	const q = `UPDATE parcelles SET name = COALESCE(?, name), area = COALESCE(?, area) WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, name, area, id); err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, id, userID)
}

// DeleteByIDAndOwner removes a parcelle together with its cultures and
// their charges/recoltes inside a single transaction.
func (r *ParcelleRepo) DeleteByIDAndOwner(ctx context.Context, id, userID uint64) error {
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
	if err = checkOwner(ctx, tx, chainParcelle, id, userID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE rc FROM recoltes rc
		 JOIN cultures c ON c.id = rc.culture_id
		 WHERE c.parcelle_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE ch FROM charges ch
		 JOIN cultures c ON c.id = ch.culture_id
		 WHERE c.parcelle_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cultures WHERE parcelle_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM parcelles WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
