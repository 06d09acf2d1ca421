package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dochub/dochub/internal/infer"
)

// ExistsFunc probes whether a physical table with the exact name exists.
type ExistsFunc func(ctx context.Context, name string) (bool, error)

// BaseName derives the stem of a generated table name: the sanitized display
// name, or {prefix}_{first 8 hex chars of the letter-type id} when the
// display name is absent.
func BaseName(displayName, letterTypeID, prefix string) string {
	trimmed := strings.TrimSpace(displayName)
	if trimmed != "" {
		return infer.SanitizeIdent(trimmed)
	}
	return fmt.Sprintf("%s_%s", prefix, shortID(letterTypeID))
}

// UniqueName appends a UTC timestamp to the base name and suffixes _1, _2, …
// until the existence probe reports the name free. Callers must hold the
// letter type's creation lock: the probe is a check-then-act sequence and two
// unserialized calls can resolve the same timestamped candidate.
func UniqueName(ctx context.Context, base string, now time.Time, exists ExistsFunc) (string, error) {
	candidate := fmt.Sprintf("%s_%s", base, now.UTC().Format("20060102_150405"))
	name := candidate
	for i := 1; ; i++ {
		found, err := exists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("checking table name %s: %w", name, err)
		}
		if !found {
			return name, nil
		}
		name = fmt.Sprintf("%s_%d", candidate, i)
	}
}

// shortID keeps the first 8 hex characters of an identifier, so a GUID-style
// letter-type id collapses to a stable short stem.
func shortID(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
			b.WriteRune(r)
		}
		if b.Len() == 8 {
			break
		}
	}
	if b.Len() == 0 {
		return "table"
	}
	return b.String()
}
