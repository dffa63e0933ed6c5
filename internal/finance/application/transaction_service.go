package application

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sirupsen/logrus"
)

type TransactionService struct {
	repo domain.TransactionRepository
	log  *logrus.Entry
	now  func() time.Time
}

func NewTransactionService(repo domain.TransactionRepository, log *logrus.Entry) *TransactionService {
	return &TransactionService{repo: repo, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, ownerID string, input domain.TransactionInput) (*domain.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	occurredAt := now
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	transaction := &domain.Transaction{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Amount:      domain.RoundToCents(*input.Amount),
		Kind:        domain.Kind(input.Kind),
		Category:    strings.TrimSpace(input.Category),
		Description: input.Description,
		OccurredAt:  occurredAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Save(ctx, transaction); err != nil {
		s.log.WithError(err).WithField("user_id", ownerID).Error("failed to save transaction")
		return nil, financeErrors.NewStoreError("save transaction", err)
	}
	return transaction, nil
}

func (s *TransactionService) GetTransactions(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	transactions, err := s.repo.FindByOwner(ctx, ownerID, filter)
	if err != nil {
		s.log.WithError(err).WithField("user_id", ownerID).Error("failed to list transactions")
		return nil, financeErrors.NewStoreError("list transactions", err)
	}
	return transactions, nil
}

// GetSummary aggregates the owner's transactions. Only the date range of the
// filter applies; kind and category would make the totals meaningless.
func (s *TransactionService) GetSummary(ctx context.Context, ownerID string, filter domain.TransactionFilter) (domain.Summary, error) {
	transactions, err := s.GetTransactions(ctx, ownerID, domain.TransactionFilter{From: filter.From, To: filter.To})
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(transactions), nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, ownerID string, transactionID uuid.UUID, update domain.TransactionUpdate) (*domain.Transaction, error) {
	transaction, err := s.loadOwned(ctx, ownerID, transactionID)
	if err != nil {
		return nil, err
	}

	if err := update.Apply(transaction); err != nil {
		return nil, err
	}
	transaction.Amount = domain.RoundToCents(transaction.Amount)
	transaction.OccurredAt = transaction.OccurredAt.UTC()
	transaction.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, transaction); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.NewNotFoundError(financeErrors.ResourceTransaction)
		}
		s.log.WithError(err).WithField("transaction_id", transactionID).Error("failed to update transaction")
		return nil, financeErrors.NewStoreError("update transaction", err)
	}
	return transaction, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, ownerID string, transactionID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, transactionID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, transactionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return financeErrors.NewNotFoundError(financeErrors.ResourceTransaction)
		}
		s.log.WithError(err).WithField("transaction_id", transactionID).Error("failed to delete transaction")
		return financeErrors.NewStoreError("delete transaction", err)
	}
	return nil
}

// loadOwned fetches a transaction and checks it belongs to ownerID.
func (s *TransactionService) loadOwned(ctx context.Context, ownerID string, transactionID uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.NewNotFoundError(financeErrors.ResourceTransaction)
		}
		s.log.WithError(err).WithField("transaction_id", transactionID).Error("failed to load transaction")
		return nil, financeErrors.NewStoreError("find transaction", err)
	}
	if transaction.OwnerID != ownerID {
		s.log.WithFields(logrus.Fields{"transaction_id": transactionID, "user_id": ownerID}).Warn("access to foreign transaction denied")
		return nil, financeErrors.NewAuthorizationError(financeErrors.ResourceTransaction)
	}
	return transaction, nil
}
