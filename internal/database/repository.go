package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-resume-insight/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrResumeNotFound is returned when a resume id has no row.
var ErrResumeNotFound = errors.New("resume not found")

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Managed connection poolers (PgBouncer in transaction mode) do not
	// support prepared statements; disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Ping verifies database reachability for the health endpoint.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Init creates the schema when it does not exist yet.
func (r *Repository) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS resumes (
			id UUID NOT NULL,
			filename VARCHAR(255) NOT NULL,
			raw_text TEXT,
			parsed_data JSONB,
			s3_url VARCHAR(255),
			created_at TIMESTAMP DEFAULT NOW() NOT NULL,
			updated_at TIMESTAMP DEFAULT NOW() NOT NULL,
			deleted_at TIMESTAMP,
			CONSTRAINT pk_resumes PRIMARY KEY (id)
		)`,
		`CREATE INDEX IF NOT EXISTS ix_resumes_id ON resumes (id)`,
	}

	for _, q := range queries {
		if _, err := r.db.Exec(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// ---------------- RESUME OPERATIONS ----------------

// SaveResume inserts a freshly uploaded resume row.
func (r *Repository) SaveResume(ctx context.Context, resume *models.Resume) error {
	query := `
		INSERT INTO resumes (id, filename, raw_text, parsed_data, s3_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	parsed := resume.ParsedData
	if len(parsed) == 0 {
		parsed = []byte("{}")
	}

	_, err := r.db.Exec(ctx, query, resume.ID, resume.Filename, resume.RawText, parsed, resume.S3URL)
	if err != nil {
		return fmt.Errorf("failed to save resume: %w", err)
	}
	return nil
}

// GetResume retrieves a resume by id.
func (r *Repository) GetResume(ctx context.Context, id uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	query := `
		SELECT id, filename, raw_text, parsed_data, s3_url, created_at, updated_at
		FROM resumes
		WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.QueryRow(ctx, query, id).
		Scan(&resume.ID, &resume.Filename, &resume.RawText, &resume.ParsedData, &resume.S3URL, &resume.CreatedAt, &resume.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrResumeNotFound, id)
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return &resume, nil
}

// UpdateParsedData stores the LLM-extracted structure for a resume.
func (r *Repository) UpdateParsedData(ctx context.Context, id uuid.UUID, parsed []byte) error {
	_, err := r.db.Exec(ctx,
		"UPDATE resumes SET parsed_data = $1, updated_at = NOW() WHERE id = $2",
		parsed, id)
	if err != nil {
		return fmt.Errorf("failed to update parsed data: %w", err)
	}
	return nil
}

// UpdateS3URL records where the original file landed in object storage.
func (r *Repository) UpdateS3URL(ctx context.Context, id uuid.UUID, s3URL string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE resumes SET s3_url = $1, updated_at = NOW() WHERE id = $2",
		s3URL, id)
	if err != nil {
		return fmt.Errorf("failed to update s3 url: %w", err)
	}
	return nil
}
