package unitofwork

import (
	"context"

	"github.com/PinsaraPerera/intellihack-backend/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	QueryRepository() contract.QueryRepository
}
