package garmentag

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Tag classifies the image at path and renames it to carry the category
// suffix, returning the new path. Classification errors are returned as-is.
// A name that already carries a suffix is returned unchanged. Rename failures
// come back as *RenameError.
func (c *Config) Tag(ctx context.Context, path string) (string, error) {
	rec := NewImageRecord(path)
	if err := c.TagRecord(ctx, rec); err != nil {
		return "", err
	}
	return rec.Path, nil
}

// TagRecord is Tag for an ImageRecord. On success rec points at the new path.
func (c *Config) TagRecord(ctx context.Context, rec *ImageRecord) error {
	cat, err := c.Classify(ctx, rec.Path)
	if err != nil {
		return err
	}

	if rec.AlreadyTagged {
		slog.Debug("garmentag: already tagged", "path", rec.Path)
		return nil
	}

	newFile := TaggedName(rec.BaseName, rec.Ext, cat)
	newPath := filepath.Join(rec.Dir, newFile)

	if err := renameNoReplace(rec.Path, newPath); err != nil {
		rerr := &RenameError{Old: rec.Path, New: newPath, Err: err}
		slog.Debug("garmentag: rename failed", "from", rec.Path, "to", newPath, "error", err.Error())
		return rerr
	}

	slog.Info("garmentag: renamed",
		"from", filepath.Base(rec.Path), "to", newFile, "category", cat.String())
	if c.OnTag != nil {
		c.OnTag(TagEvent{From: rec.Path, To: newPath, Category: cat})
	}

	rec.Path = newPath
	rec.BaseName += cat.Suffix()
	rec.AlreadyTagged = true
	return nil
}

// renameNoReplace renames oldPath to newPath unless newPath already exists.
// The new name is created as a hard link, which fails atomically when the
// target exists, and the old name is then removed. os.Rename alone would
// silently replace the target on POSIX systems.
func renameNoReplace(oldPath, newPath string) error {
	err := os.Link(oldPath, newPath)
	switch {
	case err == nil:
		if err := os.Remove(oldPath); err != nil {
			_ = os.Remove(newPath)
			return err
		}
		return nil
	case errors.Is(err, fs.ErrExist):
		return ErrTargetExists
	}

	// No hard links on this file system: check, then rename.
	slog.Debug("garmentag: hard link failed, falling back to rename", "error", err.Error())
	if _, err := os.Lstat(newPath); err == nil {
		return ErrTargetExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking target: %w", err)
	}
	return os.Rename(oldPath, newPath)
}
