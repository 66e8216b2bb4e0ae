package hardware

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func exists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

// readTrimmed returns the whitespace-trimmed contents of root/name.
func readTrimmed(root, name string) (string, error) {
	path := filepath.Join(root, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
