package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"clinic/internal/domain/auth"
	"clinic/internal/platform/config"
)

// Seed makes sure the default clinic, its roles and the first admin exist.
// It is idempotent and safe to run on every start.
func Seed(ctx context.Context, pool *Pool, cfg config.Config) error {
	clinicID, err := ensureClinic(ctx, pool, cfg.SeedClinicName)
	if err != nil {
		return fmt.Errorf("seed clinic: %w", err)
	}

	if err := ensurePermissions(ctx, pool); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}

	roleIDs, err := EnsureRoles(ctx, pool, clinicID)
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	if err := ensureAdminUser(ctx, pool, clinicID, roleIDs[auth.RoleAdmin], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func ensureClinic(ctx context.Context, pool *Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM clinics WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = pool.QueryRow(ctx, "INSERT INTO clinics (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensurePermissions(ctx context.Context, pool *Pool) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

// EnsureRoles creates the built-in roles for a clinic and grants their
// permissions. It returns role ids keyed by role name.
func EnsureRoles(ctx context.Context, pool *Pool, clinicID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, `
      INSERT INTO roles (clinic_id, name) VALUES ($1, $2)
      ON CONFLICT (clinic_id, name) DO UPDATE SET name = EXCLUDED.name
      RETURNING id
    `, clinicID, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}

	for roleName, perms := range auth.RolePermissions {
		for _, permKey := range perms {
			tag, err := pool.Exec(ctx, `
        INSERT INTO role_permissions (role_id, permission_id)
        SELECT $1, p.id FROM permissions p WHERE p.key = $2
        ON CONFLICT DO NOTHING
      `, roleIDs[roleName], permKey)
			if err != nil {
				return nil, err
			}
			if tag.RowsAffected() == 0 {
				var exists bool
				if err := pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM permissions WHERE key = $1)", permKey).Scan(&exists); err != nil {
					return nil, err
				}
				if !exists {
					return nil, errors.New("permission not found: " + permKey)
				}
			}
		}
	}
	return roleIDs, nil
}

func ensureAdminUser(ctx context.Context, pool *Pool, clinicID, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE clinic_id = $1 AND lower(email) = lower($2)", clinicID, email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (clinic_id, email, password_hash, role_id, status)
    VALUES ($1, $2, $3, $4, $5)
  `, clinicID, email, hash, roleID, auth.UserStatusActive)
	return err
}
