package users

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Profile is a normalized provider profile, already verified by the
// identity provider. It carries facts only; the canonical record lives in
// the store.
type Profile struct {
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
}

// Validate checks that a provider returned the fields a user row requires.
func (p Profile) Validate() error {
	switch {
	case p.ExternalID == "":
		return &ValidationError{Field: "external_id", Message: "must not be empty"}
	case p.Email == "":
		return &ValidationError{Field: "email", Message: "must not be empty"}
	case p.Name == "":
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	return nil
}

// Service maintains canonical user rows from provider profiles.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// SyncProfile upserts the user behind a provider profile and returns the
// canonical stored row. Sessions must embed this row, not the transient
// profile, so callers invoke SyncProfile before creating a session.
func (s *Service) SyncProfile(ctx context.Context, profile Profile) (*User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByExternalID(ctx, profile.ExternalID)
	switch {
	case err == nil:
		updated, err := s.repo.Update(ctx, profile.ExternalID, ProfileFields{
			Email:     profile.Email,
			Name:      profile.Name,
			AvatarURL: profile.AvatarURL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "[SyncProfile] failed to refresh user")
		}
		return updated, nil

	case errors.Is(err, ErrNotFound):
		inserted, err := s.repo.Insert(ctx, &User{
			ExternalID: profile.ExternalID,
			Email:      profile.Email,
			Name:       profile.Name,
			AvatarURL:  profile.AvatarURL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "[SyncProfile] failed to insert user")
		}
		log.Info().Str("external_id", profile.ExternalID).Msg("created user on first login")
		return inserted, nil

	default:
		return nil, errors.Wrap(err, "[SyncProfile] user lookup failed")
	}
}
