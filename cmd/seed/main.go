// Seeding tool that creates a set of demo accounts for local development.
// Each account starts with a 1000.00 balance. Existing accounts are left
// untouched.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/internal/repository/postgres"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/config"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

type seedAccount struct {
	username      string
	walletID      string
	accountNumber string
	phoneNumber   string
}

var seedAccounts = []seedAccount{
	{"alexjordan", "WLT-8842-1190", "1000223344", "+265991000001"},
	{"sarahchen", "WLT-5521-0374", "1000223355", "+265991000002"},
	{"mikebrown", "WLT-7733-6208", "1000223366", "+265991000003"},
	{"linamwale", "WLT-2468-9951", "1000223377", "+265991000004"},
}

func main() {
	log := logger.New("seed")
	cfg := config.Load()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	repo := postgres.NewAccountRepository(db)
	ctx := context.Background()

	initialBalance := decimal.NewFromInt(1000)

	for _, seed := range seedAccounts {
		now := time.Now()
		accountNumber := seed.accountNumber
		phoneNumber := seed.phoneNumber

		account := &domain.Account{
			ID:            uuid.New(),
			Username:      seed.username,
			WalletID:      seed.walletID,
			AccountNumber: &accountNumber,
			PhoneNumber:   &phoneNumber,
			Balance:       initialBalance,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err := repo.Create(ctx, account)
		if errors.Is(err, pkgerrors.ErrAccountAlreadyExists) {
			log.Info("Account already exists, skipping", map[string]interface{}{
				"username": seed.username,
			})
			continue
		}
		if err != nil {
			log.Fatal("Failed to create account", map[string]interface{}{
				"username": seed.username,
				"error":    err.Error(),
			})
		}
		log.Info("Account created", map[string]interface{}{
			"username":  seed.username,
			"wallet_id": seed.walletID,
		})
	}

	fmt.Println("OK: demo accounts seeded")
}
