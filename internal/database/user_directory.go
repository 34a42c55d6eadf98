package database

import (
	"context"
	"fmt"

	"github.com/careerloop/platform/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// SurrealUserDirectory implements domain.UserDirectory over SurrealDB.
type SurrealUserDirectory struct {
	db     *surrealdb.DB
	ns     string
	dbName string
}

// Compile-time interface compliance check
var _ domain.UserDirectory = (*SurrealUserDirectory)(nil)

// NewSurrealUserDirectory creates a new SurrealUserDirectory.
func NewSurrealUserDirectory(db *surrealdb.DB, ns, dbName string) *SurrealUserDirectory {
	return &SurrealUserDirectory{db: db, ns: ns, dbName: dbName}
}

// FindByID queries for a single user by their record id.
func (s *SurrealUserDirectory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := "SELECT * FROM user WHERE id = $id"
	params := map[string]any{"id": id}

	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// FindByEmail queries for a single user by their email address.
func (s *SurrealUserDirectory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := "SELECT * FROM user WHERE email = $email"
	params := map[string]any{"email": email}

	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// NoopUserDirectory stands in when no database is configured. Every lookup
// misses, which consumers already tolerate.
type NoopUserDirectory struct{}

var _ domain.UserDirectory = (*NoopUserDirectory)(nil)

func (NoopUserDirectory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (NoopUserDirectory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
