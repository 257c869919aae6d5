package domain

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewId returns a new random identifier for jobs and files.
func NewId() string {
	return uuid.NewString()
}

// NewPrivateKey returns a new secret for a job process.
func NewPrivateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// JobIdPlaceholder is replaced with the job id in output file names.
const JobIdPlaceholder = "${job-id}"
