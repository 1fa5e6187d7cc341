package storage

import (
	"context"

	"pulse-lab/domain"

	"github.com/dgraph-io/badger/v4"
)

type ProfileRepository struct {
	db *badger.DB
}

func NewProfileRepository(db *badger.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (p *ProfileRepository) GetProfile(ctx context.Context, user domain.UserID) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	var profile domain.Profile
	err := p.db.View(func(txn *badger.Txn) error {
		s, err := getValue(txn, profileKey(string(user)))
		if err != nil {
			return err
		}
		profile = domain.Profile{
			UserID:      domain.UserID(str(s, "user_id")),
			DisplayName: str(s, "display_name"),
			AvatarURL:   str(s, "avatar_url"),
		}
		return nil
	})
	return profile, mapError(err)
}

func (p *ProfileRepository) SaveProfile(ctx context.Context, profile domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, profileKey(string(profile.UserID)), map[string]any{
			"user_id":      string(profile.UserID),
			"display_name": profile.DisplayName,
			"avatar_url":   profile.AvatarURL,
		})
	})
	return mapError(err)
}
