package utils

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashJSON hashes the canonical JSON encoding of v. Struct fields marshal in
// declaration order, so equal values always produce equal hashes.
func HashJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal for hashing: %w", err)
	}
	return HashString(string(data)), nil
}
