package mapper

import (
	"encoding/json"

	"github.com/PinsaraPerera/intellihack-backend/internal/entity"
	"github.com/PinsaraPerera/intellihack-backend/internal/model"

	"gorm.io/datatypes"
)

type QueryMapper struct{}

func NewQueryMapper() *QueryMapper {
	return &QueryMapper{}
}

func (m *QueryMapper) ToEntity(q *model.Query) *entity.Query {
	if q == nil {
		return nil
	}

	var sources []entity.QuerySource
	if len(q.Sources) > 0 {
		// Unreadable sources only cost the citation list, not the record
		_ = json.Unmarshal(q.Sources, &sources)
	}

	return &entity.Query{
		Id:        q.Id,
		UserId:    q.UserId,
		Kind:      entity.QueryKind(q.Kind),
		Message:   q.Message,
		Response:  q.Response,
		Sources:   sources,
		CreatedAt: q.CreatedAt,
	}
}

func (m *QueryMapper) ToModel(q *entity.Query) *model.Query {
	if q == nil {
		return nil
	}

	var sources datatypes.JSON
	if len(q.Sources) > 0 {
		if raw, err := json.Marshal(q.Sources); err == nil {
			sources = datatypes.JSON(raw)
		}
	}

	return &model.Query{
		Id:        q.Id,
		UserId:    q.UserId,
		Kind:      string(q.Kind),
		Message:   q.Message,
		Response:  q.Response,
		Sources:   sources,
		CreatedAt: q.CreatedAt,
	}
}

func (m *QueryMapper) ToEntities(queries []*model.Query) []*entity.Query {
	entities := make([]*entity.Query, len(queries))
	for i, q := range queries {
		entities[i] = m.ToEntity(q)
	}
	return entities
}
