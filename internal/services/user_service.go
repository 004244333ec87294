package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/calummcrae/showspin/internal/models"
)

var (
	// ErrEmailTaken is returned when registering with an email that
	// already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for a wrong email/password pair.
	// It deliberately does not say which half was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const userColumns = `id, email, first_name, last_name, provider, provider_id, password_hash, created_at, updated_at`

// UserService handles account business logic
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a new UserService
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Provider,
		&user.ProviderID,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates an email/password account
func (s *UserService) Register(ctx context.Context, email, firstName, lastName, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (email, first_name, last_name, password_hash, provider)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRow(ctx, query, email, firstName, lastName, string(hash), models.ProviderEmail))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks an email/password pair and returns the account
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// OAuth-only accounts have no password to compare against.
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// FindByEmail finds a user by email
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRow(ctx, query, email))
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRow(ctx, query, id))
}

// FindOrCreateOAuth finds the account matching an OAuth identity or
// creates one. An existing email/password account with the same email is
// left untouched; the provider identity gets its own row only when the
// email is free.
func (s *UserService) FindOrCreateOAuth(ctx context.Context, provider models.Provider, providerID, email, firstName, lastName string) (*models.User, error) {
	if !provider.IsValid() || provider == models.ProviderEmail {
		return nil, fmt.Errorf("invalid oauth provider: %s", provider)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND provider_id = $2`
	user, err := scanUser(s.db.QueryRow(ctx, query, provider, providerID))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	insert := `
		INSERT INTO users (email, first_name, last_name, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err = scanUser(s.db.QueryRow(ctx, insert, email, firstName, lastName, provider, providerID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdatePassword re-hashes and stores a new password for the user
func (s *UserService) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	result, err := s.db.Exec(ctx, query, id, string(hash))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
