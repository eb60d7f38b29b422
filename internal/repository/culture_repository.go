package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Culture represents one crop-growing cycle on a parcelle. Status moves
// between Active, Récoltée and Abandonnée; IsValidated may only ever be
// flipped by an admin. Charges and Recoltes are child rows loaded on list
// and get endpoints so the client can compute displays without extra
// round-trips; a nil slice simply means no children.
type Culture struct {
	ID          uint64     `json:"id"`
	ParcelleID  uint64     `json:"parcelleId"`
	Type        string     `json:"type"`
	SowingDate  time.Time  `json:"sowingDate"`
	Status      string     `json:"status"`
	IsValidated bool       `json:"isValidated"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Charges     []*Charge  `json:"charges,omitempty"`
	Recoltes    []*Recolte `json:"recoltes,omitempty"`
}

// Culture statuses. Stored as free text in the column but the handler layer
// only ever writes one of these values.
const (
	StatusActive     = "Active"
	StatusRecoltee   = "Récoltée"
	StatusAbandonnee = "Abandonnée"
)

// CultureRepo provides persistence for cultures and loads their charge and
// recolte children.
type CultureRepo struct {
	db *sql.DB
}

// NewCultureRepo constructs a CultureRepo with the given DB handle.
func NewCultureRepo(db *sql.DB) *CultureRepo {
	return &CultureRepo{db: db}
}

const cultureCols = "c.id, c.parcelle_id, c.type, c.sowing_date, c.status, c.is_validated, c.created_at, c.updated_at"

func scanCulture(row interface{ Scan(...any) error }, c *Culture) error {
	return row.Scan(&c.ID, &c.ParcelleID, &c.Type, &c.SowingDate, &c.Status, &c.IsValidated, &c.CreatedAt, &c.UpdatedAt)
}

// Create inserts a new culture with status Active and is_validated false.
// The caller must already have verified ownership of the parent parcelle.
func (r *CultureRepo) Create(ctx context.Context, c *Culture) error {
	if c.Status == "" {
		c.Status = StatusActive
	}
	const qInsert = "INSERT INTO cultures (parcelle_id, type, sowing_date, status) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, c.ParcelleID, c.Type, c.SowingDate, c.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	const qSelect = "SELECT " + cultureCols + " FROM cultures c WHERE c.id = ?"
	return scanCulture(r.db.QueryRowContext(ctx, qSelect, c.ID), c)
}

// GetByIDAndOwner fetches a culture (with children) whose ownership chain
// resolves to the given user.
func (r *CultureRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*Culture, error) {
	const q = `SELECT ` + cultureCols + ` FROM cultures c
	           JOIN parcelles p ON p.id = c.parcelle_id
	           JOIN exploitations e ON e.id = p.exploitation_id
	           WHERE c.id = ? AND e.user_id = ?`
	var c Culture
	if err := scanCulture(r.db.QueryRowContext(ctx, q, id, userID), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, []*Culture{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID fetches a culture by id regardless of owner. Admin call sites
// only: the validation workflow lets an admin reach any tenant's culture.
func (r *CultureRepo) GetByID(ctx context.Context, id uint64) (*Culture, error) {
	const q = "SELECT " + cultureCols + " FROM cultures c WHERE c.id = ?"
	var c Culture
	if err := scanCulture(r.db.QueryRowContext(ctx, q, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, []*Culture{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns all cultures (with children) whose ownership chain
// resolves to the user, optionally restricted to one parcelle.
func (r *CultureRepo) ListByOwner(ctx context.Context, userID, parcelleID uint64) ([]*Culture, error) {
	q := `SELECT ` + cultureCols + ` FROM cultures c
	      JOIN parcelles p ON p.id = c.parcelle_id
	      JOIN exploitations e ON e.id = p.exploitation_id
	      WHERE e.user_id = ?`
	args := []any{userID}
	if parcelleID != 0 {
		q += ` AND c.parcelle_id = ?`
		args = append(args, parcelleID)
	}
	q += ` ORDER BY c.id`
	return r.list(ctx, q, args...)
}

// ListByExploitation returns all cultures (with children) under one
// exploitation. Ownership of the exploitation is the caller's concern.
func (r *CultureRepo) ListByExploitation(ctx context.Context, exploitationID uint64) ([]*Culture, error) {
	const q = `SELECT ` + cultureCols + ` FROM cultures c
	           JOIN parcelles p ON p.id = c.parcelle_id
	           WHERE p.exploitation_id = ? ORDER BY c.id`
	return r.list(ctx, q, exploitationID)
}

func (r *CultureRepo) list(ctx context.Context, q string, args ...any) ([]*Culture, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Culture
	for rows.Next() {
		c := new(Culture)
		if err := scanCulture(rows, c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadChildren fetches charges and recoltes for a batch of cultures with a
// single IN query per child table and distributes the rows onto their
// parents.
func (r *CultureRepo) loadChildren(ctx context.Context, cultures []*Culture) error {
	if len(cultures) == 0 {
		return nil
	}
	byID := make(map[uint64]*Culture, len(cultures))
	ids := make([]any, 0, len(cultures))
	for _, c := range cultures {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	chQ := `SELECT id, culture_id, type, amount, date, created_at FROM charges WHERE culture_id IN (` + ph + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, chQ, ids...)
	if err != nil {
		return err
	}
	for rows.Next() {
		ch := new(Charge)
		if err := rows.Scan(&ch.ID, &ch.CultureID, &ch.Type, &ch.Amount, &ch.Date, &ch.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		byID[ch.CultureID].Charges = append(byID[ch.CultureID].Charges, ch)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rcQ := `SELECT id, culture_id, quantity, price, date, created_at FROM recoltes WHERE culture_id IN (` + ph + `) ORDER BY id`
	rows, err = r.db.QueryContext(ctx, rcQ, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		rc := new(Recolte)
		if err := rows.Scan(&rc.ID, &rc.CultureID, &rc.Quantity, &rc.Price, &rc.Date, &rc.CreatedAt); err != nil {
			return err
		}
		byID[rc.CultureID].Recoltes = append(byID[rc.CultureID].Recoltes, rc)
	}
	return rows.Err()
}

// Update applies a partial update. Ownership must have been established by
// the caller beforehand (owners via the chain, admins unconditionally);
// isValidated must be nil unless the caller is an admin — the handler
// drops the field for exploitants so their bodies can never flip it.
func (r *CultureRepo) Update(ctx context.Context, id uint64, typ *string, sowingDate *time.Time, status *string, isValidated *bool) (*Culture, error) {
	const q = `UPDATE cultures
	           SET type = COALESCE(?, type),
	               sowing_date = COALESCE(?, sowing_date),
	               status = COALESCE(?, status),
	               is_validated = COALESCE(?, is_validated)
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, typ, sowingDate, status, isValidated, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// OwnerOf resolves the owning user of a culture. Used by handlers that
// need the owner id without fetching the whole row.
func (r *CultureRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	return ownerOf(ctx, r.db, chainCulture, id)
}

// DeleteByIDAndOwner removes a culture and its charges/recoltes inside a
// single transaction.
func (r *CultureRepo) DeleteByIDAndOwner(ctx context.Context, id, userID uint64) error {
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
	if err = checkOwner(ctx, tx, chainCulture, id, userID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM recoltes WHERE culture_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM charges WHERE culture_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cultures WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
