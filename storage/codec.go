// Package storage is the badger-backed data store: rooms, durable memberships,
// profiles, messages, reputation records, focus sessions and tasks.
// Values are protobuf Structs so the inspector can decode any of them.
package storage

import (
	"fmt"
	"time"

	"pulse-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	roomPrefix       = "room:"
	memberPrefix     = "member:"
	profilePrefix    = "profile:"
	messagePrefix    = "msg:"
	reputationPrefix = "rep:"
	focusPrefix      = "focus:"
	taskPrefix       = "task:"
)

func roomKey(id string) []byte { return []byte(roomPrefix + id) }

func memberKey(room, user string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", memberPrefix, room, user))
}

func profileKey(user string) []byte { return []byte(profilePrefix + user) }

func reputationKey(user string) []byte { return []byte(reputationPrefix + user) }

func focusKey(user, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", focusPrefix, user, id))
}

func taskKey(user, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", taskPrefix, user, id))
}

// mapError translates badger failures into the store taxonomy.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errors.ErrNotFound), errors.Is(err, errors.ErrConflict), errors.Is(err, errors.ErrTransient):
		return err
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: %v", errors.ErrNotFound, err)
	case errors.Is(err, badger.ErrConflict):
		return fmt.Errorf("%w: %v", errors.ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", errors.ErrTransient, err)
	}
}

func marshal(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func unmarshal(data []byte) (*structpb.Struct, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func getValue(txn *badger.Txn, key []byte) (*structpb.Struct, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	var s *structpb.Struct
	err = item.Value(func(val []byte) error {
		s, err = unmarshal(val)
		return err
	})
	return s, err
}

func setValue(txn *badger.Txn, key []byte, fields map[string]any) error {
	data, err := marshal(fields)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func str(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func num(s *structpb.Struct, name string) int {
	return int(s.GetFields()[name].GetNumberValue())
}

func strList(s *structpb.Struct, name string) []string {
	var res []string
	for _, v := range s.GetFields()[name].GetListValue().GetValues() {
		res = append(res, v.GetStringValue())
	}
	return res
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s *structpb.Struct, name string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, str(s, name))
}

// optionalTime returns nil when the field is absent or empty.
func optionalTime(s *structpb.Struct, name string) (*time.Time, error) {
	raw := str(s, name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
