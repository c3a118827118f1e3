package dialect

import (
	"fmt"
	"strings"
)

// NormalizeFileName implements the Files resource's normalising
// function: it always returns the bare id, regardless of whether value
// was already bare, fully
// qualified ("files/abc-123"), or embedded in a download URL
// ("https://.../files/abc-123?alt=media").
func NormalizeFileName(value string) (string, error) {
	const marker = "files/"
	if isURL(value) {
		id, err := extractAfterMarker(value, marker)
		if err != nil {
			return "", err
		}
		return id, nil
	}
	if strings.HasPrefix(value, marker) {
		return strings.TrimPrefix(value, marker), nil
	}
	return value, nil
}

// NormalizeResourceName is the generic form of the resource-naming
// pattern the rest of the resource family shares (FileSearchStores,
// Caches, Batches, Tunings, Operations, AuthTokens): accept a bare id, a
// fully qualified name, or a URL embedding the id after prefix, and
// return the fully qualified "prefix+id" form idempotently. Unlike
// NormalizeFileName this keeps the prefix.
func NormalizeResourceName(value, prefix string) (string, error) {
	if isURL(value) {
		id, err := extractAfterMarker(value, prefix)
		if err != nil {
			return "", err
		}
		return prefix + id, nil
	}
	if strings.HasPrefix(value, prefix) {
		return value, nil
	}
	return prefix + value, nil
}

func isURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// extractAfterMarker finds marker in value and takes the run of
// ascii-lowercase/digit/hyphen characters immediately following it, the
// same character class used to stop at the
// first query string or path separator.
func extractAfterMarker(value, marker string) (string, error) {
	idx := strings.Index(value, marker)
	if idx < 0 {
		return "", fmt.Errorf("could not find %q in URI: %s", marker, value)
	}
	suffix := value[idx+len(marker):]
	end := 0
	for end < len(suffix) {
		c := suffix[end]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		if isLower || isDigit || c == '-' {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return "", fmt.Errorf("could not extract resource id from URI: %s", value)
	}
	return suffix[:end], nil
}
