package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Recolte represents a harvest/sale event recorded against a culture.
// Revenue is quantity × price, always computed and never stored.
type Recolte struct {
	ID        uint64    `json:"id"`
	CultureID uint64    `json:"cultureId"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecolteRepo provides persistence for recoltes.
type RecolteRepo struct {
	db *sql.DB
}

// NewRecolteRepo constructs a RecolteRepo with the given DB handle.
func NewRecolteRepo(db *sql.DB) *RecolteRepo {
	return &RecolteRepo{db: db}
}

const recolteCols = "r.id, r.culture_id, r.quantity, r.price, r.date, r.created_at"

func scanRecolte(row interface{ Scan(...any) error }, rc *Recolte) error {
	return row.Scan(&rc.ID, &rc.CultureID, &rc.Quantity, &rc.Price, &rc.Date, &rc.CreatedAt)
}

// Create inserts a new recolte. The caller must already have verified
// ownership of the parent culture.
func (r *RecolteRepo) Create(ctx context.Context, rc *Recolte) error {
	const qInsert = "INSERT INTO recoltes (culture_id, quantity, price, date) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, rc.CultureID, rc.Quantity, rc.Price, rc.Date)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rc.ID = uint64(id)

	const qSelect = "SELECT " + recolteCols + " FROM recoltes r WHERE r.id = ?"
	return scanRecolte(r.db.QueryRowContext(ctx, qSelect, rc.ID), rc)
}

// GetByIDAndOwner fetches a recolte whose ownership chain resolves to the
// given user.
func (r *RecolteRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*Recolte, error) {
	const q = `SELECT ` + recolteCols + ` FROM recoltes r
	           JOIN cultures c ON c.id = r.culture_id
	           JOIN parcelles p ON p.id = c.parcelle_id
	           JOIN exploitations e ON e.id = p.exploitation_id
	           WHERE r.id = ? AND e.user_id = ?`
	var rc Recolte
	if err := scanRecolte(r.db.QueryRowContext(ctx, q, id, userID), &rc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rc, nil
}

// ListByOwner returns all recoltes whose ownership chain resolves to the
// user, optionally restricted to one culture.
func (r *RecolteRepo) ListByOwner(ctx context.Context, userID, cultureID uint64) ([]*Recolte, error) {
	q := `SELECT ` + recolteCols + ` FROM recoltes r
	      JOIN cultures c ON c.id = r.culture_id
	      JOIN parcelles p ON p.id = c.parcelle_id
	      JOIN exploitations e ON e.id = p.exploitation_id
	      WHERE e.user_id = ?`
	args := []any{userID}
	if cultureID != 0 {
		q += ` AND r.culture_id = ?`
		args = append(args, cultureID)
	}
	q += ` ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Recolte
	for rows.Next() {
		rc := new(Recolte)
		if err := scanRecolte(rows, rc); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial update after re-checking ownership. Nil fields
// keep their stored value.
func (r *RecolteRepo) Update(ctx context.Context, id, userID uint64, quantity, price *float64, date *time.Time) (*Recolte, error) {
	if err := checkOwner(ctx, r.db, chainRecolte, id, userID); err != nil {
		return nil, err
	}
	const q = `UPDATE recoltes
	           SET quantity = COALESCE(?, quantity), price = COALESCE(?, price), date = COALESCE(?, date)
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, quantity, price, date, id); err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, id, userID)
}

// DeleteByIDAndOwner removes a recolte after re-checking ownership.
func (r *RecolteRepo) DeleteByIDAndOwner(ctx context.Context, id, userID uint64) error {
	if err := checkOwner(ctx, r.db, chainRecolte, id, userID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM recoltes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
