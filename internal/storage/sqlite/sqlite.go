// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/friendsplit/internal/models"
	"github.com/mmynk/friendsplit/internal/storage"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// For file paths it creates the parent directories. Migrations run automatically
// and clear rows from earlier processes.
func New(dbPath string) (*SQLiteStore, error) {
	inMemory := dbPath == MemoryPath || strings.Contains(dbPath, "mode=memory")
	if !inMemory {
		// Create parent directory if it doesn't exist
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateFriend persists a new friend at the end of the session's registry.
func (s *SQLiteStore) CreateFriend(ctx context.Context, sessionID string, friend *models.Friend) error {
	if friend.ID == "" {
		return fmt.Errorf("friend ID required")
	}
	if friend.CreatedAt == 0 {
		friend.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friends (session_id, id, name, avatar_url, balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, friend.ID, friend.Name, friend.AvatarURL, friend.Balance.String(), friend.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friend: %w", err)
	}

	return nil
}

// GetFriend retrieves a friend by ID.
func (s *SQLiteStore) GetFriend(ctx context.Context, sessionID, friendID string) (*models.Friend, error) {
	return getFriend(ctx, s.db, sessionID, friendID)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getFriend(ctx context.Context, q queryer, sessionID, friendID string) (*models.Friend, error) {
	friend := &models.Friend{}
	var balance string

	err := q.QueryRowContext(ctx,
		`SELECT id, name, avatar_url, balance, created_at
		 FROM friends WHERE session_id = ? AND id = ?`,
		sessionID, friendID,
	).Scan(&friend.ID, &friend.Name, &friend.AvatarURL, &balance, &friend.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}

	friend.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance of friend %s: %w", friendID, err)
	}

	return friend, nil
}

// ListFriends retrieves the session's friends in insertion order.
func (s *SQLiteStore) ListFriends(ctx context.Context, sessionID string) ([]models.Friend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, avatar_url, balance, created_at
		 FROM friends WHERE session_id = ? ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		var friend models.Friend
		var balance string
		if err := rows.Scan(&friend.ID, &friend.Name, &friend.AvatarURL, &balance, &friend.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		if friend.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("failed to parse balance of friend %s: %w", friend.ID, err)
		}
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}

	return friends, nil
}

// AdjustBalance adds delta to one friend's balance inside a transaction.
func (s *SQLiteStore) AdjustBalance(ctx context.Context, sessionID, friendID string, delta decimal.Decimal) (*models.Friend, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	friend, err := getFriend(ctx, tx, sessionID, friendID)
	if err != nil {
		return nil, err
	}
	friend.Balance = friend.Balance.Add(delta)

	_, err = tx.ExecContext(ctx,
		"UPDATE friends SET balance = ? WHERE session_id = ? AND id = ?",
		friend.Balance.String(), sessionID, friendID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return friend, nil
}

// DeleteSession removes all rows belonging to a session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM friends WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete friends: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
