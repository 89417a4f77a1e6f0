package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
)

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, sender_id, recipient_id, amount, channel, status, description, created_at
		) VALUES (
			:id, :sender_id, :recipient_id, :amount, :channel, :status, :description, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, transaction)
	return errors.Wrap(err, "failed to create transaction")
}

func (r *TransactionRepository) FindByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	query := `
		SELECT * FROM transactions
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC
	`
	err := r.db.SelectContext(ctx, &transactions, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find transactions by participant")
	}
	return transactions, nil
}
