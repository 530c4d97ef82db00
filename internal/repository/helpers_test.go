package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/repository"
)

func TestInClauseBuilder(t *testing.T) {
	b := repository.NewInClauseBuilder(3)
	b.Add("CONFIRMED")
	b.Add("ACTIVE")

	assert.Equal(t, ":3, :4", b.Placeholders())
	assert.Equal(t, []interface{}{"CONFIRMED", "ACTIVE"}, b.Args())
	assert.Equal(t, 5, b.NextIndex())
}

func TestQueryBuilder(t *testing.T) {
	qb := repository.NewQueryBuilder(1)
	assert.Equal(t, "", qb.WhereClause())

	qb.AddCondition("c.status = :%d", "PENDING")
	qb.AddCondition("c.vehicle_id = :%d", int64(7))

	assert.Equal(t, " AND c.status = :1 AND c.vehicle_id = :2", qb.WhereClause())
	assert.Equal(t, []interface{}{"PENDING", int64(7)}, qb.Args())
	assert.Equal(t, 3, qb.NextIndex())
}

func TestChunkSlice(t *testing.T) {
	assert.Nil(t, repository.ChunkSlice([]int64{}, 2))

	chunks := repository.ChunkSlice([]int64{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}, {5}}, chunks)

	whole := repository.ChunkSlice([]int64{1, 2}, 10)
	assert.Equal(t, [][]int64{{1, 2}}, whole)
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, repository.NullableString("").Valid)
	assert.True(t, repository.NullableString("x").Valid)

	s := "hello"
	assert.True(t, repository.NullableStringPtr(&s).Valid)
	assert.False(t, repository.NullableStringPtr(nil).Valid)

	assert.Equal(t, "hello", repository.StringFromNull(sql.NullString{String: "hello", Valid: true}))
	assert.Equal(t, "", repository.StringFromNull(sql.NullString{}))

	assert.Nil(t, repository.StringPtrFromNull(sql.NullString{}))
	assert.Equal(t, "hello", *repository.StringPtrFromNull(sql.NullString{String: "hello", Valid: true}))

	now := time.Now()
	assert.True(t, repository.NullableTime(&now).Valid)
	assert.False(t, repository.NullableTime(nil).Valid)
	assert.Nil(t, repository.TimeFromNull(sql.NullTime{}))
	assert.Equal(t, now, repository.TimeValueFromNull(sql.NullTime{Time: now, Valid: true}))
	assert.True(t, repository.TimeValueFromNull(sql.NullTime{}).IsZero())
}

func TestBoolHelpers(t *testing.T) {
	assert.Equal(t, 1, repository.BoolToInt(true))
	assert.Equal(t, 0, repository.BoolToInt(false))
	assert.True(t, repository.IntToBool(1))
	assert.False(t, repository.IntToBool(0))
	assert.False(t, repository.IntToBool(2))
}

func TestIsDuplicateKeyAndIsSerialization(t *testing.T) {
	assert.True(t, repository.IsDuplicateKey(repository.ErrDuplicateKey))
	assert.True(t, repository.IsSerialization(repository.ErrSerialization))
	assert.False(t, repository.IsDuplicateKey(repository.ErrNotFound))
	assert.False(t, repository.IsSerialization(nil))
}
