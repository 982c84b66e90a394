// Package service is the seam between transport and storage. It adds
// logging around the repository and nothing else; there are no business
// rules here yet.
package service

import (
	"context"

	"github.com/TechXTT/tidbreader/internal/logger"
	"github.com/TechXTT/tidbreader/internal/record"
	"github.com/rs/zerolog"
)

// UserRepository is what the service needs from storage.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (record.Record, bool, error)
}

// UserService looks users up by ID.
type UserService struct {
	repo UserRepository
	log  zerolog.Logger
}

// NewUserService returns a service backed by repo.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, log: logger.Component("service")}
}

// GetUserByID returns the user row, ok == false when it does not exist.
// Errors come back exactly as the repository returned them.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (record.Record, bool, error) {
	s.log.Info().Int64("user_id", id).Msg("fetching user")

	rec, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("error fetching user")
		return nil, false, err
	}
	if !ok {
		s.log.Info().Int64("user_id", id).Msg("user not found")
		return nil, false, nil
	}

	s.log.Info().Int64("user_id", id).Msg("user retrieved")
	return rec, true, nil
}
