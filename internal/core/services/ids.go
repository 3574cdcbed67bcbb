package services

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
)

// newID generates a document id
func newID() string {
	return uuid.NewString()
}

// fragmentID derives a stable fragment id from its document and ordinal,
// so re-indexing one document overwrites its fragments in place.
func fragmentID(docID string, ordinal int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID+"/"+strconv.Itoa(ordinal))).String()
}

// generateRandomString generates a cryptographically secure random string.
func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}
