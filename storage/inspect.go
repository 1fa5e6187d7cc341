package storage

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
)

var kinds = []struct {
	prefix string
	kind   string
}{
	{roomPrefix, "ROOM"},
	{memberPrefix, "MEMBER"},
	{profilePrefix, "PROFILE"},
	{messagePrefix, "MESSAGE"},
	{reputationPrefix, "REPUTATION"},
	{focusPrefix, "FOCUS"},
	{taskPrefix, "TASK"},
}

// Describe summarizes a raw key/value pair for the debug inspector.
func Describe(key string, val []byte) (kind, detail string, err error) {
	kind = "RAW"
	for _, k := range kinds {
		if strings.HasPrefix(key, k.prefix) {
			kind = k.kind
			break
		}
	}
	s, err := unmarshal(val)
	if err != nil {
		return kind, "", err
	}
	switch kind {
	case "MESSAGE":
		return kind, fmt.Sprintf("%s: %s", str(s, "sender_name"), str(s, "content")), nil
	case "REPUTATION":
		return kind, fmt.Sprintf("%d pts, streak %d, badges [%s]",
			num(s, "points"), num(s, "focus_streak"), strings.Join(strList(s, "badges"), ", ")), nil
	default:
		data, err := protojson.Marshal(s)
		if err != nil {
			return kind, "", err
		}
		return kind, string(data), nil
	}
}
