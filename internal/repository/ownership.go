package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Every tenant-owned row resolves to exactly one user by walking parent
// foreign keys (charge/recolte -> culture -> parcelle -> exploitation ->
// user). Instead of repeating that join chain in every repository method,
// the chain is written once per entity here and ownership-scoped methods
// go through ownerOf.

const (
	chainExploitation = `SELECT e.user_id FROM exploitations e WHERE e.id = ?`
	chainParcelle     = `SELECT e.user_id FROM parcelles p
	                     JOIN exploitations e ON e.id = p.exploitation_id
	                     WHERE p.id = ?`
	chainCulture = `SELECT e.user_id FROM cultures c
	                JOIN parcelles p ON p.id = c.parcelle_id
	                JOIN exploitations e ON e.id = p.exploitation_id
	                WHERE c.id = ?`
	chainCharge = `SELECT e.user_id FROM charges ch
	               JOIN cultures c ON c.id = ch.culture_id
	               JOIN parcelles p ON p.id = c.parcelle_id
	               JOIN exploitations e ON e.id = p.exploitation_id
	               WHERE ch.id = ?`
	chainRecolte = `SELECT e.user_id FROM recoltes r
	                JOIN cultures c ON c.id = r.culture_id
	                JOIN parcelles p ON p.id = c.parcelle_id
	                JOIN exploitations e ON e.id = p.exploitation_id
	                WHERE r.id = ?`
)

// queryRower is satisfied by both *sql.DB and *sql.Tx so ownership checks
// can run inside or outside a transaction.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ownerOf resolves the owning user id for the row identified by id using
// the provided chain query. ErrNotFound is returned when the row is absent.
func ownerOf(ctx context.Context, q queryRower, chain string, id uint64) (uint64, error) {
	var userID uint64
	if err := q.QueryRowContext(ctx, chain, id).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return userID, nil
}

// checkOwner resolves the owner of a row and compares it against the
// caller. A mismatch yields ErrNotFound rather than a 403-style error: a foreign row
// must be indistinguishable from an absent one.
func checkOwner(ctx context.Context, q queryRower, chain string, id, callerID uint64) error {
	owner, err := ownerOf(ctx, q, chain, id)
	if err != nil {
		return err
	}
	if owner != callerID {
		return ErrNotFound
	}
	return nil
}
