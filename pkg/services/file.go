package services

import (
	"os"
	"path/filepath"
	"strings"
)

// SafeJoin joins target onto root/sub, refusing path traversal.
func SafeJoin(root, sub, target string) string {
	cleanTarget := filepath.Clean(target)
	if strings.Contains(cleanTarget, "..") {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

// WriteFile writes a source document, creating parent directories as needed.
// Without overwrite the create is exclusive: the existence check and the
// write are a single O_EXCL open, so two concurrent creators cannot both
// win the same path.
func WriteFile(path string, content []byte, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return badRequest("cannot_mkdir", "The content directory could not be created.")
	}
	if overwrite {
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return badRequest("file_error", "Unable to write the source file.")
		}
		return nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fileConflict()
		}
		return badRequest("file_error", "Unable to open the source file.")
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return badRequest("file_error", "Unable to write the source file.")
	}
	return nil
}
