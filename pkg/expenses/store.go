// Package expenses persists categorized receipt expenses in SQLite.
package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout has fixed-width fractional seconds so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get when no expense has the given ID.
var ErrNotFound = errors.New("expenses: not found")

// Expense is one stored receipt.
type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	ImagePath   string    `json:"imagePath"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store reads and writes expenses.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a Store backed by db. Migrations must already be applied.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Add assigns an ID and creation time when missing and inserts e.
func (s *Store) Add(ctx context.Context, e Expense) (Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	const query = `INSERT INTO expenses (id, description, date, amount, category, image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Description, e.Date, e.Amount, e.Category, e.ImagePath,
		e.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Expense{}, fmt.Errorf("expenses: add %s: %w", e.ID, err)
	}

	return e, nil
}

// Get returns the expense with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Expense, error) {
	const query = `SELECT id, description, date, amount, category, image_path, created_at
		FROM expenses WHERE id = ?`

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Expense{}, ErrNotFound
	}
	if err != nil {
		return Expense{}, fmt.Errorf("expenses: get %s: %w", id, err)
	}
	return e, nil
}

// List returns all expenses, newest first.
func (s *Store) List(ctx context.Context) ([]Expense, error) {
	const query = `SELECT id, description, date, amount, category, image_path, created_at
		FROM expenses ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("expenses: list: %w", err)
	}
	defer rows.Close()

	result := []Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("expenses: scan: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expenses: iterate: %w", err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (Expense, error) {
	var (
		e         Expense
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.Description, &e.Date, &e.Amount, &e.Category, &e.ImagePath, &createdAt); err != nil {
		return Expense{}, err
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Expense{}, fmt.Errorf("parse created_at for %s: %w", e.ID, err)
	}
	e.CreatedAt = t

	return e, nil
}
