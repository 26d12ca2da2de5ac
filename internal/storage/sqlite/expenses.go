package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
)

// CreateExpense persists a submitted split.
func (s *SQLiteStore) CreateExpense(ctx context.Context, sessionID string, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	// Make sure the friend belongs to this session; the foreign key only
	// checks that it exists somewhere.
	if _, err := getFriend(ctx, s.db, sessionID, expense.FriendID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (session_id, id, friend_id, bill_total, payer_share, payer, delta, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, expense.ID, expense.FriendID,
		expense.BillTotal.String(), expense.PayerShare.String(), string(expense.Payer),
		expense.Delta.String(), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	return nil
}

// ListExpenses retrieves all expenses recorded against a friend, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, sessionID, friendID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, friend_id, bill_total, payer_share, payer, delta, created_at
		 FROM expenses WHERE session_id = ? AND friend_id = ? ORDER BY position DESC`,
		sessionID, friendID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var (
			expense                      models.Expense
			billTotal, payerShare, delta string
			payer                        string
		)
		if err := rows.Scan(&expense.ID, &expense.FriendID, &billTotal, &payerShare, &payer, &delta, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		if expense.BillTotal, err = decimal.NewFromString(billTotal); err != nil {
			return nil, fmt.Errorf("failed to parse bill total: %w", err)
		}
		if expense.PayerShare, err = decimal.NewFromString(payerShare); err != nil {
			return nil, fmt.Errorf("failed to parse payer share: %w", err)
		}
		if expense.Delta, err = decimal.NewFromString(delta); err != nil {
			return nil, fmt.Errorf("failed to parse delta: %w", err)
		}
		expense.Payer = models.Payer(payer)

		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}
