// Package ledger performs the atomic balance mutation behind a settlement:
// debit, credit, and transaction record append as a single database
// transaction.
package ledger

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
)

type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Posting describes one settled transfer. Record carries the final COMPLETED
// transaction; it is inserted in the same database transaction as the
// balance updates so readers never observe a partially applied settlement.
type Posting struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Amount      decimal.Decimal
	Record      *domain.Transaction
}

// PostTransfer applies the posting atomically. Accounts are locked in
// deterministic id order to prevent deadlocks between concurrent transfers,
// and the debit is conditional on sufficient balance so the sender can never
// go negative under concurrency.
func (s *Service) PostTransfer(ctx context.Context, posting *Posting) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return errors.Wrap(err, "failed to begin settlement transaction")
	}
	defer tx.Rollback()

	accountIDs := []uuid.UUID{posting.SenderID, posting.RecipientID}
	if posting.SenderID.String() > posting.RecipientID.String() {
		accountIDs = []uuid.UUID{posting.RecipientID, posting.SenderID}
	}

	for _, accountID := range accountIDs {
		var balance decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`,
			accountID,
		).Scan(&balance)
		if err != nil {
			if err == sql.ErrNoRows {
				return errors.ErrAccountNotFound
			}
			return errors.Wrap(err, "failed to lock account")
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE accounts SET
			balance = balance - $1,
			updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`, posting.Amount, posting.SenderID)
	if err != nil {
		return errors.Wrap(err, "failed to debit sender")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE accounts SET
			balance = balance + $1,
			updated_at = NOW()
		WHERE id = $2
	`, posting.Amount, posting.RecipientID)
	if err != nil {
		return errors.Wrap(err, "failed to credit recipient")
	}

	record := posting.Record
	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (
			id, sender_id, recipient_id, amount, channel, status, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		record.ID, record.SenderID, record.RecipientID, record.Amount,
		record.Channel, record.Status, record.Description, record.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to append transaction record")
	}

	return tx.Commit()
}
