package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/migrate [up|drop]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("All tables created successfully")

	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("All tables dropped successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	schema := `
	CREATE TABLE IF NOT EXISTS visitors (
		visitor_id     TEXT PRIMARY KEY,
		referrer       TEXT,
		user_agent     TEXT NOT NULL DEFAULT '',
		visit_count    BIGINT NOT NULL DEFAULT 1 CHECK (visit_count >= 1),
		first_visit    TIMESTAMPTZ NOT NULL,
		last_visit     TIMESTAMPTZ NOT NULL,
		total_duration BIGINT NOT NULL DEFAULT 0,
		device_type    TEXT NOT NULL DEFAULT '',
		browser        TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_visitors_first_visit ON visitors (first_visit);
	CREATE INDEX IF NOT EXISTS idx_visitors_last_visit ON visitors (last_visit DESC);

	CREATE TABLE IF NOT EXISTS visitor_count (
		id         TEXT PRIMARY KEY,
		count      BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS content_documents (
		content_type TEXT PRIMARY KEY,
		data         JSONB NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS guestbook_entries (
		id         UUID PRIMARY KEY,
		author     TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_guestbook_created_at ON guestbook_entries (created_at DESC);
	`

	_, err := conn.Exec(ctx, schema)
	return err
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		DROP TABLE IF EXISTS guestbook_entries;
		DROP TABLE IF EXISTS content_documents;
		DROP TABLE IF EXISTS visitor_count;
		DROP TABLE IF EXISTS visitors;
	`)
	return err
}
