package storage

import (
	"context"
	"time"

	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

type ReputationRepository struct {
	db *badger.DB
}

func NewReputationRepository(db *badger.DB) *ReputationRepository {
	return &ReputationRepository{db: db}
}

// FetchOrCreate returns the stored record or a fresh one. A fresh record is
// only written by the following Save.
func (r *ReputationRepository) FetchOrCreate(ctx context.Context, user domain.UserID, now time.Time) (domain.ReputationRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ReputationRecord{}, err
	}
	var record domain.ReputationRecord
	err := r.db.View(func(txn *badger.Txn) error {
		s, err := getValue(txn, reputationKey(string(user)))
		if err != nil {
			return err
		}
		record, err = toReputation(s)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.NewReputationRecord(user, now), nil
	}
	return record, mapError(err)
}

func (r *ReputationRepository) Save(ctx context.Context, record domain.ReputationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, reputationKey(string(record.UserID)), fromReputation(record))
	})
	return mapError(err)
}

func (r *ReputationRepository) List(ctx context.Context) ([]domain.ReputationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []domain.ReputationRecord
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(reputationPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				s, err := unmarshal(val)
				if err != nil {
					return err
				}
				record, err := toReputation(s)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return records, mapError(err)
}

func fromReputation(r domain.ReputationRecord) map[string]any {
	return map[string]any{
		"user_id":       string(r.UserID),
		"points":        r.Points,
		"level":         string(r.Level),
		"focus_streak":  r.FocusStreak,
		"last_focus_at": formatOptionalTime(r.LastFocusAt),
		"badges":        lo.Map(r.Badges, func(b domain.Badge, _ int) any { return string(b) }),
		"updated_at":    formatTime(r.UpdatedAt),
	}
}

// toReputation derives the level from points, the stored level is informative only.
func toReputation(s *structpb.Struct) (domain.ReputationRecord, error) {
	lastFocusAt, err := optionalTime(s, "last_focus_at")
	if err != nil {
		return domain.ReputationRecord{}, err
	}
	updatedAt, err := parseTime(s, "updated_at")
	if err != nil {
		return domain.ReputationRecord{}, err
	}
	points := num(s, "points")
	return domain.ReputationRecord{
		UserID:      domain.UserID(str(s, "user_id")),
		Points:      points,
		Level:       domain.LevelFor(points),
		FocusStreak: num(s, "focus_streak"),
		LastFocusAt: lastFocusAt,
		Badges:      lo.Map(strList(s, "badges"), func(b string, _ int) domain.Badge { return domain.Badge(b) }),
		UpdatedAt:   updatedAt,
	}, nil
}
