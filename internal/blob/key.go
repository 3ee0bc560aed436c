package blob

import (
	"path"
	"strings"
)

// CleanKey normalizes key and rejects keys that could escape the store root.
func CleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	return path.Clean(key), nil
}
