package implementation

import (
	"context"

	"github.com/PinsaraPerera/intellihack-backend/internal/entity"
	"github.com/PinsaraPerera/intellihack-backend/internal/mapper"
	"github.com/PinsaraPerera/intellihack-backend/internal/model"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/contract"
	"github.com/PinsaraPerera/intellihack-backend/internal/repository/specification"

	"gorm.io/gorm"
)

type QueryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QueryMapper
}

func NewQueryRepository(db *gorm.DB) contract.QueryRepository {
	return &QueryRepositoryImpl{
		db:     db,
		mapper: mapper.NewQueryMapper(),
	}
}

func (r *QueryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QueryRepositoryImpl) Create(ctx context.Context, query *entity.Query) error {
	m := r.mapper.ToModel(query)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*query = *r.mapper.ToEntity(m)
	return nil
}

func (r *QueryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Query, error) {
	var models []*model.Query
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QueryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Query{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *QueryRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.Query{}).Error
}
