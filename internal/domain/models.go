// Package domain holds the core types of the transfer engine.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel identifies the transfer medium.
type Channel string

const (
	ChannelWallet Channel = "wallet"
	ChannelQR     Channel = "qr"
	ChannelBank   Channel = "bank"
)

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelWallet, ChannelQR, ChannelBank:
		return true
	}
	return false
}

// Label returns the display name used in transaction listings.
func (c Channel) Label() string {
	switch c {
	case ChannelWallet:
		return "Wallet Transfer"
	case ChannelBank:
		return "Bank Transfer"
	case ChannelQR:
		return "QR Payment"
	}
	return string(c)
}

// StepUp is the additional verification a transfer requires before settlement.
type StepUp string

const (
	StepUpNone StepUp = "none"
	StepUpPIN  StepUp = "pin"
	StepUpOTP  StepUp = "otp"
)

// Account is a registered wallet user. Username, WalletID and AccountNumber
// are each unique across all accounts; the balance is mutated only by the
// settlement engine and never goes negative.
type Account struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Username      string          `json:"username" db:"username"`
	WalletID      string          `json:"wallet_id" db:"wallet_id"`
	AccountNumber *string         `json:"account_number,omitempty" db:"account_number"`
	PhoneNumber   *string         `json:"phone_number,omitempty" db:"phone_number"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// TransactionStatus is the persisted outcome of a transfer. Requests are only
// recorded after the settlement decision, so there is no pending status.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable audit record appended by the settlement engine.
type Transaction struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	SenderID    uuid.UUID         `json:"sender_id" db:"sender_id"`
	RecipientID uuid.UUID         `json:"recipient_id" db:"recipient_id"`
	Amount      decimal.Decimal   `json:"amount" db:"amount"`
	Channel     Channel           `json:"channel" db:"channel"`
	Status      TransactionStatus `json:"status" db:"status"`
	Description string            `json:"description" db:"description"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

// AttemptState tracks one in-flight transfer through its lifecycle.
// COMPLETED and FAILED are terminal.
type AttemptState string

const (
	AttemptInitiated          AttemptState = "initiated"
	AttemptResolvingRecipient AttemptState = "resolving_recipient"
	AttemptCheckingAmount     AttemptState = "checking_amount"
	AttemptDeterminingStepUp  AttemptState = "determining_step_up"
	AttemptAwaitingPIN        AttemptState = "awaiting_pin"
	AttemptAwaitingOTP        AttemptState = "awaiting_otp"
	AttemptSettling           AttemptState = "settling"
	AttemptCompleted          AttemptState = "completed"
	AttemptFailed             AttemptState = "failed"
)

// Terminal reports whether the attempt can no longer change state.
func (s AttemptState) Terminal() bool {
	return s == AttemptCompleted || s == AttemptFailed
}

// DeliveryStatus is the notifier outcome reported back to the caller.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)
