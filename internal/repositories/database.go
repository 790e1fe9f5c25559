package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/config"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/utils"
	"go.opentelemetry.io/otel/attribute"

	_ "github.com/lib/pq"
)

type Repository struct {
	DB         *sql.DB
	Submission *SubmissionRepository
}

func New(cfg *config.Config) (*Repository, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	ctx, cancel := utils.WithDBTimeout(context.Background())
	defer cancel()

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Repository{DB: db, Submission: NewSubmissionRepo(db)}, nil
}

func (p *Repository) Close() error {
	return p.DB.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS wizard_submissions (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL,
		order_id VARCHAR(64) NOT NULL,
		email VARCHAR(255) NOT NULL,
		flow VARCHAR(16) NOT NULL,
		outcome VARCHAR(16) NOT NULL,
		diff JSONB NOT NULL DEFAULT '[]',
		address_id VARCHAR(64),
		sync_status VARCHAR(16),
		error_message TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_wizard_submissions_order ON wizard_submissions(order_id);
	`

	_, err := db.ExecContext(ctx, schema)

	return err
}
