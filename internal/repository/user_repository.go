package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/agrigestion/farm-api/internal/utils"
)

// User mirrors the 'users' table. The password hash is never serialized.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Roles understood by the application. Exploitants own a hierarchy of
// exploitations; admins own nothing but have cross-tenant access.
const (
	RoleExploitant = "exploitant"
	RoleAdmin      = "admin"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, name, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, role) VALUES (?,?,?,?)",
		email, hash, name, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,name,role,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,name,role,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// ListAll returns every user ordered by id. Admin-only callers.
func (r *UserRepo) ListAll(ctx context.Context) ([]*User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,name,role,created_at,updated_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*User
	for rows.Next() {
		u := new(User)
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile updates name/email for the user themselves. Nil fields are
// left unchanged (COALESCE keeps the stored value).
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, email *string) error {
	if email != nil {
		e := strings.ToLower(strings.TrimSpace(*email))
		email = &e
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name = COALESCE(?, name), email = COALESCE(?, email) WHERE id = ?`,
		name, email, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both when the row is absent and when nothing
		// changed; distinguish by checking existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AdminUpdate updates any user's name, email, role and optionally resets
// the password hash. Nil fields are left unchanged.
func (r *UserRepo) AdminUpdate(ctx context.Context, id uint64, name, email, role, passwordHash *string) error {
	if email != nil {
		e := strings.ToLower(strings.TrimSpace(*email))
		email = &e
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name = COALESCE(?, name), email = COALESCE(?, email),
		        role = COALESCE(?, role), password_hash = COALESCE(?, password_hash)
		 WHERE id = ?`,
		name, email, role, passwordHash, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// UpdateRole sets only the role of a user.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCascade removes a user together with every exploitation, parcelle,
// culture, charge, recolte and refresh token the user owns. The whole
// subtree is deleted child-first inside one transaction so a crash cannot
// leave orphaned children behind.
func (r *UserRepo) DeleteCascade(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
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
	var exists uint64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			err = ErrNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE rc FROM recoltes rc
		 JOIN cultures c ON c.id = rc.culture_id
		 JOIN parcelles p ON p.id = c.parcelle_id
		 JOIN exploitations e ON e.id = p.exploitation_id
		 WHERE e.user_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE ch FROM charges ch
		 JOIN cultures c ON c.id = ch.culture_id
		 JOIN parcelles p ON p.id = c.parcelle_id
		 JOIN exploitations e ON e.id = p.exploitation_id
		 WHERE e.user_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE c FROM cultures c
		 JOIN parcelles p ON p.id = c.parcelle_id
		 JOIN exploitations e ON e.id = p.exploitation_id
		 WHERE e.user_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE p FROM parcelles p
		 JOIN exploitations e ON e.id = p.exploitation_id
		 WHERE e.user_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM exploitations WHERE user_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
