package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Charge represents an expense recorded against a culture.
type Charge struct {
	ID        uint64    `json:"id"`
	CultureID uint64    `json:"cultureId"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChargeRepo provides persistence for charges.
type ChargeRepo struct {
	db *sql.DB
}

// NewChargeRepo constructs a ChargeRepo with the given DB handle.
func NewChargeRepo(db *sql.DB) *ChargeRepo {
	return &ChargeRepo{db: db}
}

const chargeCols = "ch.id, ch.culture_id, ch.type, ch.amount, ch.date, ch.created_at"

func scanCharge(row interface{ Scan(...any) error }, c *Charge) error {
	return row.Scan(&c.ID, &c.CultureID, &c.Type, &c.Amount, &c.Date, &c.CreatedAt)
}

// Create inserts a new charge. The caller must already have verified
// ownership of the parent culture.
func (r *ChargeRepo) Create(ctx context.Context, c *Charge) error {
	const qInsert = "INSERT INTO charges (culture_id, type, amount, date) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, c.CultureID, c.Type, c.Amount, c.Date)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	const qSelect = "SELECT " + chargeCols + " FROM charges ch WHERE ch.id = ?"
	return scanCharge(r.db.QueryRowContext(ctx, qSelect, c.ID), c)
}

// GetByIDAndOwner fetches a charge whose ownership chain resolves to the
// given user.
func (r *ChargeRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*Charge, error) {
	const q = `SELECT ` + chargeCols + ` FROM charges ch
	           JOIN cultures c ON c.id = ch.culture_id
	           JOIN parcelles p ON p.id = c.parcelle_id
	           JOIN exploitations e ON e.id = p.exploitation_id
	           WHERE ch.id = ? AND e.user_id = ?`
	var c Charge
	if err := scanCharge(r.db.QueryRowContext(ctx, q, id, userID), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns all charges whose ownership chain resolves to the
// user, optionally restricted to one culture.
func (r *ChargeRepo) ListByOwner(ctx context.Context, userID, cultureID uint64) ([]*Charge, error) {
	q := `SELECT ` + chargeCols + ` FROM charges ch
	      JOIN cultures c ON c.id = ch.culture_id
	      JOIN parcelles p ON p.id = c.parcelle_id
	      JOIN exploitations e ON e.id = p.exploitation_id
	      WHERE e.user_id = ?`
	args := []any{userID}
	if cultureID != 0 {
		q += ` AND ch.culture_id = ?`
		args = append(args, cultureID)
	}
	q += ` ORDER BY ch.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Charge
	for rows.Next() {
		c := new(Charge)
		if err := scanCharge(rows, c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial update after re-checking ownership. Nil fields
// keep their stored value.
func (r *ChargeRepo) Update(ctx context.Context, id, userID uint64, typ *string, amount *float64, date *time.Time) (*Charge, error) {
	if err := checkOwner(ctx, r.db, chainCharge, id, userID); err != nil {
		return nil, err
	}
	const q = `UPDATE charges
	           SET type = COALESCE(?, type), amount = COALESCE(?, amount), date = COALESCE(?, date)
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, typ, amount, date, id); err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, id, userID)
}

// DeleteByIDAndOwner removes a charge after re-checking ownership.
func (r *ChargeRepo) DeleteByIDAndOwner(ctx context.Context, id, userID uint64) error {
	if err := checkOwner(ctx, r.db, chainCharge, id, userID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM charges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
