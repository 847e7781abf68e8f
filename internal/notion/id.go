package notion

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var hexIDPattern = regexp.MustCompile(`[0-9a-fA-F]{32}$`)

// ParseID extracts the block id from a page URL or a bare id and returns it
// in dashed UUID form.
func ParseID(urlOrID string) (string, error) {
	s := strings.TrimSpace(urlOrID)
	if s == "" {
		return "", fmt.Errorf("empty block id")
	}

	if id, err := uuid.Parse(s); err == nil {
		return id.String(), nil
	}

	if u, err := url.Parse(s); err == nil && u.Path != "" {
		s = u.Path
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}

	// Dashed ids at the end of a slug: "My-Page-1429989f-e8ac-4eff-bc8f-57f56486db54"
	if len(s) >= 36 {
		if id, err := uuid.Parse(s[len(s)-36:]); err == nil {
			return id.String(), nil
		}
	}

	m := hexIDPattern.FindString(s)
	if m == "" {
		return "", fmt.Errorf("no block id in %q", urlOrID)
	}
	id, err := uuid.Parse(m)
	if err != nil {
		return "", fmt.Errorf("invalid block id in %q: %w", urlOrID, err)
	}
	return id.String(), nil
}
