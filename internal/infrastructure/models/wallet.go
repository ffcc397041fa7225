package models

import (
	"time"
)

// Wallet is the wallets table. (network, address) is unique; flow_id and
// account_id reference flows and accounts.
type Wallet struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	Address       string  `gorm:"type:varchar(255);not null;uniqueIndex:uq_wallets_network_address,priority:2"`
	Network       string  `gorm:"type:varchar(64);not null;uniqueIndex:uq_wallets_network_address,priority:1"`
	Smart         bool    `gorm:"not null"`
	Safe          bool    `gorm:"not null"`
	SafeVersion   *string `gorm:"type:varchar(32)"`
	SafeSaltNonce *string `gorm:"type:varchar(255)"`
	SafeDeployed  bool    `gorm:"not null"`
	FlowID        int64   `gorm:"not null;index"`
	MasterID      *int64  `gorm:"column:account_id;index"`
	Version       int64   `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Wallet) TableName() string {
	return "wallets"
}
