package specification

import (
	"testing"

	"github.com/PinsaraPerera/intellihack-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestHistorySpecificationsBuildSQL(t *testing.T) {
	db := dryRunDB(t)

	specs := []Specification{
		ByUserID{UserID: "42"},
		ByKind{Kind: "chat"},
		OrderBy{Field: "created_at", Desc: true},
		Pagination{Limit: 5},
	}
	q := db.Model(&model.Query{})
	for _, s := range specs {
		q = s.Apply(q)
	}
	stmt := q.Find(&[]model.Query{}).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `FROM "queries"`)
	assert.Contains(t, sql, "user_id = $1")
	assert.Contains(t, sql, "kind = $2")
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Contains(t, sql, "LIMIT $3")
	assert.Equal(t, []interface{}{"42", "chat", 5}, stmt.Vars)
}
