package entities

import (
	"time"

	"github.com/google/uuid"
)

// Flow is the payment flow that owns a set of wallets
type Flow struct {
	ID             int64     `json:"id"`
	UUID           uuid.UUID `json:"uuid"`
	Name           string    `json:"name"`
	WalletProvider string    `json:"walletProvider"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Account is a principal that can be set as a wallet's master
type Account struct {
	ID        int64     `json:"id"`
	Address   string    `json:"address"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
