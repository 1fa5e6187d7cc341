package storage

import (
	"context"
	"testing"

	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/stretchr/testify/require"
)

func TestProfileRepository(t *testing.T) {
	req := require.New(t)
	repository := NewProfileRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repository.GetProfile(ctx, "alice")
	req.ErrorIs(err, errors.ErrNotFound)

	profile := domain.Profile{UserID: "alice", DisplayName: "Alice", AvatarURL: "https://cdn/alice.png"}
	req.NoError(repository.SaveProfile(ctx, profile))

	fetched, err := repository.GetProfile(ctx, "alice")
	req.NoError(err)
	req.Equal(profile, fetched)
}
