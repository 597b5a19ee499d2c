package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ayush/argumetrics/internal/models"
)

var (
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUnknownOwner is returned when an argument references a missing user.
	ErrUnknownOwner = errors.New("owner does not exist")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBTX is the subset of pgx used by the stores. *pgxpool.Pool satisfies it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore handles users and arguments against PostgreSQL.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id       SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS arguments (
		id          SERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		archetype   TEXT NOT NULL CHECK (archetype IN ('Technical', 'Business', 'Research', 'Educational')),
		user_id     INTEGER NOT NULL REFERENCES users(id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the users and arguments tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, password FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, password FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a user. in.Password must already be hashed.
func (s *PostgresStore) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (username, password)
		 VALUES ($1, $2)
		 RETURNING id, username, password`,
		in.Username, in.Password,
	).Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

const argumentColumns = `id, title, description, archetype, user_id, created_at`

func (s *PostgresStore) GetArguments(ctx context.Context) ([]models.Argument, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+argumentColumns+` FROM arguments ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("get arguments: %w", err)
	}
	defer rows.Close()

	args := []models.Argument{}
	for rows.Next() {
		a, err := scanArgument(rows)
		if err != nil {
			return nil, fmt.Errorf("get arguments: %w", err)
		}
		args = append(args, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get arguments: %w", err)
	}
	return args, nil
}

func (s *PostgresStore) GetArgument(ctx context.Context, id int64) (*models.Argument, error) {
	a, err := scanArgument(s.db.QueryRow(ctx,
		`SELECT `+argumentColumns+` FROM arguments WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get argument: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) CreateArgument(ctx context.Context, ownerID int64, in models.InsertArgument) (*models.Argument, error) {
	a, err := scanArgument(s.db.QueryRow(ctx,
		`INSERT INTO arguments (title, description, archetype, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+argumentColumns,
		in.Title, in.Description, string(in.Archetype), ownerID,
	))
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, ErrUnknownOwner
		}
		return nil, fmt.Errorf("create argument: %w", err)
	}
	return &a, nil
}

// DeleteArgument removes an argument. Deleting a missing id is not an error.
func (s *PostgresStore) DeleteArgument(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM arguments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete argument: %w", err)
	}
	return nil
}

// GetArgumentsByArchetype counts arguments per archetype. Archetypes with no
// rows are omitted.
func (s *PostgresStore) GetArgumentsByArchetype(ctx context.Context) ([]models.ArchetypeCount, error) {
	rows, err := s.db.Query(ctx,
		`SELECT archetype, count(*)::int FROM arguments GROUP BY archetype ORDER BY archetype`,
	)
	if err != nil {
		return nil, fmt.Errorf("archetype report: %w", err)
	}
	defer rows.Close()

	report := []models.ArchetypeCount{}
	for rows.Next() {
		var (
			archetype string
			count     int
		)
		if err := rows.Scan(&archetype, &count); err != nil {
			return nil, fmt.Errorf("archetype report: %w", err)
		}
		report = append(report, models.ArchetypeCount{Archetype: models.Archetype(archetype), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archetype report: %w", err)
	}
	return report, nil
}

func scanArgument(row pgx.Row) (models.Argument, error) {
	var (
		a         models.Argument
		archetype string
	)
	err := row.Scan(&a.ID, &a.Title, &a.Description, &archetype, &a.UserID, &a.CreatedAt)
	a.Archetype = models.Archetype(archetype)
	return a, err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
