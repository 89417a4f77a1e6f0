package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (
			id, username, wallet_id, account_number, phone_number, balance, created_at, updated_at
		) VALUES (
			:id, :username, :wallet_id, :account_number, :phone_number, :balance, :created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.ErrAccountAlreadyExists
		}
		return errors.Wrap(err, "failed to create account")
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account := &domain.Account{}
	query := `SELECT * FROM accounts WHERE id = $1`
	err := r.db.GetContext(ctx, account, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrAccountNotFound
		}
		return nil, errors.Wrap(err, "failed to find account by id")
	}
	return account, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account := &domain.Account{}
	query := `SELECT * FROM accounts WHERE username = $1`
	err := r.db.GetContext(ctx, account, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrAccountNotFound
		}
		return nil, errors.Wrap(err, "failed to find account by username")
	}
	return account, nil
}

func (r *AccountRepository) FindByWalletID(ctx context.Context, walletID string) (*domain.Account, error) {
	account := &domain.Account{}
	query := `SELECT * FROM accounts WHERE wallet_id = $1`
	err := r.db.GetContext(ctx, account, query, walletID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrAccountNotFound
		}
		return nil, errors.Wrap(err, "failed to find account by wallet id")
	}
	return account, nil
}

func (r *AccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account := &domain.Account{}
	query := `SELECT * FROM accounts WHERE account_number = $1`
	err := r.db.GetContext(ctx, account, query, accountNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrAccountNotFound
		}
		return nil, errors.Wrap(err, "failed to find account by account number")
	}
	return account, nil
}

func (r *AccountRepository) Search(ctx context.Context, prefix string, limit int) ([]*domain.Account, error) {
	var accounts []*domain.Account
	query := `
		SELECT * FROM accounts
		WHERE username ILIKE $1 OR wallet_id ILIKE $1 OR account_number ILIKE $1
		ORDER BY username
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &accounts, query, "%"+prefix+"%", limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search accounts")
	}
	return accounts, nil
}
