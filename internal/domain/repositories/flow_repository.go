package repositories

import (
	"context"

	"payflow.backend/internal/domain/entities"
)

// FlowRepository defines flow data operations
type FlowRepository interface {
	Create(ctx context.Context, flow *entities.Flow) error
	GetByID(ctx context.Context, id int64) (*entities.Flow, error)
}

// AccountRepository defines account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id int64) (*entities.Account, error)
}
