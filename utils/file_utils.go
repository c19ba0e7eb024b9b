package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ReadEntryListFromFile reads one entry per line, skipping blank lines and # comments.
func ReadEntryListFromFile(f string) ([]string, error) {
	file, err := os.Open(f)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	entries := make([]string, 0, 128)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// WriteTempFile writes data to a uniquely named file under dir (os.TempDir when empty).
// The caller owns the returned path and must remove it.
func WriteTempFile(dir string, prefix string, data []byte) (string, error) {
	if len(dir) == 0 {
		dir = os.TempDir()
	}
	tmpPath := filepath.Join(dir, prefix+uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write tmp file failed, err:%w", err)
	}
	return tmpPath, nil
}
