package watcher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
)

// Fingerprint hashes the contents of files. A missing file hashes
// differently from an empty one.
func Fingerprint(files []string) (string, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, file := range sorted {
		fileHash, err := HashFile(file)
		if os.IsNotExist(err) {
			fileHash = "absent"
		} else if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%s\n", file, fileHash)
	}

	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
