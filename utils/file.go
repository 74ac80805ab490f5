package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HashBytes returns the hex-encoded SHA-256 of the document content. It is
// the identity of a Document across uploads.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SanitizeFilename replaces anything outside [a-zA-Z0-9._-] so uploaded
// names are safe to use on disk.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}

// SaveUploadWithTimestamp writes the uploaded bytes into dir under
// name_timestamp.ext and returns the destination path.
func SaveUploadWithTimestamp(data []byte, dir, originalName string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(originalName, ext)
	filename := SanitizeFilename(fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext))
	destPath := filepath.Join(dir, filename)

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return destPath, nil
}
