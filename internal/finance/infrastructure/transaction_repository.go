package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, amount, type, category, description, occurred_at, created_at, updated_at`

func (r *TransactionRepository) Save(ctx context.Context, transaction *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		transaction.ID, transaction.OwnerID, transaction.Amount, string(transaction.Kind), transaction.Category,
		transaction.Description, transaction.OccurredAt, transaction.CreatedAt, transaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, transactionID)

	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func (r *TransactionRepository) FindByOwner(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{ownerID}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.From != nil {
		addCondition("occurred_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("occurred_at < $%d", *filter.To)
	}
	if filter.Category != "" {
		addCondition("category = $%d", filter.Category)
	}
	if filter.Kind != "" {
		addCondition("type = $%d", string(filter.Kind))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
        WHERE ` + strings.Join(conditions, " AND ") + `
        ORDER BY occurred_at DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions
        SET amount = $1, type = $2, category = $3, description = $4, occurred_at = $5, updated_at = $6
        WHERE id = $7 AND user_id = $8`,
		transaction.Amount, string(transaction.Kind), transaction.Category, transaction.Description,
		transaction.OccurredAt, transaction.UpdatedAt, transaction.ID, transaction.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectAffected(result)
}

func (r *TransactionRepository) Delete(ctx context.Context, transactionID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectAffected(result)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var description sql.NullString
	err := row.Scan(&transaction.ID, &transaction.OwnerID, &transaction.Amount, &transaction.Kind, &transaction.Category,
		&description, &transaction.OccurredAt, &transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		// sql.ErrNoRows stays visible to callers through %w
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	transaction.Description = description.String
	return &transaction, nil
}

// expectAffected turns an update or delete that touched nothing into sql.ErrNoRows.
func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
