// Package callbacks parses selection payloads of the form <prefix><suffix>,
// e.g. "genre_Party" or "admin_delete_game_42".
package callbacks

import (
	"fmt"
	"strconv"
	"strings"
)

// Suffix returns what follows prefix in data.
func Suffix(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", false
	}
	return data[len(prefix):], true
}

// SuffixInt64 parses the suffix after prefix as a positive id.
func SuffixInt64(data, prefix string) (int64, error) {
	s, ok := Suffix(data, prefix)
	if !ok {
		return 0, fmt.Errorf("payload %q lacks prefix %q", data, prefix)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("payload %q: malformed id %q", data, s)
	}
	return id, nil
}

// Build joins prefix and suffix into a payload.
func Build(prefix string, suffix any) string {
	return prefix + fmt.Sprint(suffix)
}

// SplitLast splits "admin_edit_<field>_<id>" style payloads after prefix into
// the middle token and the trailing id.
func SplitLast(data, prefix string) (string, int64, error) {
	rest, ok := Suffix(data, prefix)
	if !ok {
		return "", 0, fmt.Errorf("payload %q lacks prefix %q", data, prefix)
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return "", 0, fmt.Errorf("payload %q: missing id", data)
	}
	id, err := strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("payload %q: malformed id", data)
	}
	return rest[:i], id, nil
}
