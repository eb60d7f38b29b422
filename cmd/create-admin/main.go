// Command create-admin seeds the administrator account. It is idempotent:
// when the email already exists the account is forced back to the admin role
// and its password is reset, so the tool can run on every deploy.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrigestion/farm-api/internal/config"
	"github.com/agrigestion/farm-api/internal/database"
	"github.com/agrigestion/farm-api/internal/repository"
	"github.com/agrigestion/farm-api/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@agri-gestion.com"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Administrateur"
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Resync: force the role and reset the password.
		hash, herr := utils.HashPassword(password, cfg.BcryptCost)
		if herr != nil {
			log.Fatalf("hash password: %v", herr)
		}
		role := repository.RoleAdmin
		if uerr := users.AdminUpdate(ctx, existing.ID, &name, nil, &role, &hash); uerr != nil {
			log.Fatalf("update admin: %v", uerr)
		}
		log.Printf("admin account synchronised: %s (id=%d)", email, existing.ID)
	case errors.Is(err, repository.ErrNotFound):
		id, cerr := users.Create(ctx, email, password, name, repository.RoleAdmin, cfg.BcryptCost)
		if cerr != nil {
			log.Fatalf("create admin: %v", cerr)
		}
		log.Printf("admin account created: %s (id=%d)", email, id)
	default:
		log.Fatalf("lookup admin: %v", err)
	}
}
