package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// Get command
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	// Connect to database
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		"DROP TABLE IF EXISTS tasks",
		"DROP TABLE IF EXISTS users",
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT UNIQUE,
			name TEXT NOT NULL,
			password TEXT,
			google_id TEXT UNIQUE,
			picture TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			priority TEXT NOT NULL DEFAULT 'Medium' CHECK (priority IN ('Low', 'Medium', 'High')),
			status TEXT NOT NULL DEFAULT 'To Do' CHECK (status IN ('To Do', 'In Progress', 'Done')),
			due_date TIMESTAMPTZ,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		"CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks (user_id, priority)",
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	digest, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	userID := uuid.NewString()

	_, err = conn.Exec(ctx, `
		INSERT INTO users (id, email, username, name, password)
		VALUES ($1, 'demo@example.com', 'demo', 'Demo User', $2)
		ON CONFLICT (email) DO NOTHING
	`, userID, string(digest))
	if err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	// Resolve the ID in case the user already existed
	if err := conn.QueryRow(ctx, "SELECT id FROM users WHERE email = 'demo@example.com'").Scan(&userID); err != nil {
		return fmt.Errorf("failed to resolve demo user: %w", err)
	}

	tasks := []struct {
		title    string
		priority string
		status   string
		due      time.Time
	}{
		{"Review pull requests", "High", "In Progress", time.Now().AddDate(0, 0, 1)},
		{"Write project documentation", "Medium", "To Do", time.Now().AddDate(0, 0, 7)},
		{"Clean up CI pipeline", "Low", "Done", time.Now().AddDate(0, 0, -2)},
	}

	for _, t := range tasks {
		_, err := conn.Exec(ctx, `
			INSERT INTO tasks (title, priority, status, due_date, user_id)
			VALUES ($1, $2, $3, $4, $5)
		`, t.title, t.priority, t.status, t.due, userID)
		if err != nil {
			return fmt.Errorf("failed to seed task %q: %w", t.title, err)
		}
	}

	return nil
}
