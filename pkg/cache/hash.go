package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey joins a namespace with the digest of the JSON encoding of parts,
// e.g. "artifact:3f2a...". Parts must be JSON-encodable.
func hashKey(namespace string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return namespace + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data. Source files are keyed by
// their content hash so a renamed file still hits its parsed imports.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
