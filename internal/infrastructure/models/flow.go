package models

import (
	"time"

	"github.com/google/uuid"
)

type Flow struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	UUID           uuid.UUID `gorm:"column:uuid;type:uuid;uniqueIndex;not null"`
	Name           string    `gorm:"type:varchar(255);not null"`
	WalletProvider string    `gorm:"type:varchar(64)"`
	Version        int64     `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Flow) TableName() string {
	return "flows"
}

type Account struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Address   string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Version   int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Account) TableName() string {
	return "accounts"
}
