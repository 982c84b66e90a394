// Package repository holds the SQL that reads users.
package repository

import (
	"context"

	"github.com/TechXTT/tidbreader/internal/core"
	"github.com/TechXTT/tidbreader/internal/logger"
	"github.com/TechXTT/tidbreader/internal/record"
	"github.com/TechXTT/tidbreader/internal/typeconv"
	"github.com/TechXTT/tidbreader/pkg/runtime"
	"github.com/rs/zerolog"
)

// Acquirer leases a pooled connection for the duration of fn.
type Acquirer interface {
	Acquire(ctx context.Context, fn func(ctx context.Context, q runtime.Querier) error) error
	Dialect() core.Dialect
}

// UserRepository reads rows from the users table.
type UserRepository struct {
	pool  Acquirer
	table string
	log   zerolog.Logger
}

// NewUserRepository returns a repository over table. table must be a
// trusted identifier; it is validated when the config is loaded.
func NewUserRepository(pool Acquirer, table string) *UserRepository {
	return &UserRepository{
		pool:  pool,
		table: table,
		log:   logger.Component("repository"),
	}
}

// GetByID selects every column of the row whose primary key is id.
// A missing row is reported with ok == false and a nil error. Database
// errors are returned unmodified.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (rec record.Record, ok bool, err error) {
	query, args := core.NewQueryBuilder(r.pool.Dialect()).
		Select("*").
		From(r.table).
		Where("id = ?", id).
		Limit(1).
		Build()

	err = r.pool.Acquire(ctx, func(ctx context.Context, q runtime.Querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		types, err := rows.ColumnTypes()
		if err != nil {
			return err
		}
		if !rows.Next() {
			return rows.Err()
		}

		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}

		names := make([]string, len(types))
		for i, ct := range types {
			names[i] = ct.Name()
			values[i] = typeconv.Normalize(values[i], ct.DatabaseTypeName())
		}
		rec, ok = record.Zip(names, values), true
		return rows.Close()
	})
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", id).Msg("database error while fetching user")
		return nil, false, err
	}
	if !ok {
		r.log.Debug().Int64("user_id", id).Msg("no user found")
		return nil, false, nil
	}
	r.log.Debug().Int64("user_id", id).Msg("user found")
	return rec, true, nil
}
