package contract

import (
	"context"

	"github.com/PinsaraPerera/intellihack-backend/internal/entity"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/specification"
)

type QueryRepository interface {
	Create(ctx context.Context, query *entity.Query) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Query, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteAllByUserId(ctx context.Context, userId string) error
}
