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

// Summary is the outcome of a batch run.
type Summary struct {
	Attempted int
	Succeeded int
	Failures  []ItemFailure
}

// ItemFailure records why one file could not be tagged.
type ItemFailure struct {
	Path string
	Err  error
}

// ListCandidates returns the paths in dir that a batch run would tag:
// regular files with a configured extension whose names contain no reserved
// substring. Fails with ErrDirectoryNotFound when dir is missing.
func (c *Config) ListCandidates(dir string) ([]string, error) {
	c.defaults()

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryNotFound, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !hasExtension(name, c.Extensions) {
			continue
		}
		if IsReserved(name) {
			slog.Debug("garmentag: skipping reserved name", "name", name)
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// ProcessDirectory tags every candidate image in dir. A failure on one file
// is recorded in the summary and the run moves on to the next file.
func (c *Config) ProcessDirectory(ctx context.Context, dir string) (Summary, error) {
	paths, err := c.ListCandidates(dir)
	if err != nil {
		return Summary{}, err
	}
	return c.ProcessPaths(ctx, paths)
}

// ProcessPaths tags each path in order, one at a time. It stops early only
// when ctx is done.
func (c *Config) ProcessPaths(ctx context.Context, paths []string) (Summary, error) {
	var sum Summary
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		sum.Attempted++
		if err := c.tagOne(ctx, p); err != nil {
			slog.Warn("garmentag: tagging failed", "path", p, "error", err.Error())
			f := ItemFailure{Path: p, Err: err}
			sum.Failures = append(sum.Failures, f)
			if c.OnFailure != nil {
				c.OnFailure(f)
			}
			continue
		}
		sum.Succeeded++
	}

	slog.Info("garmentag: batch finished",
		"attempted", sum.Attempted, "succeeded", sum.Succeeded, "failed", len(sum.Failures))
	return sum, nil
}

// tagOne tags a single file. Recovers from panics so one bad file cannot end
// the batch.
func (c *Config) tagOne(ctx context.Context, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if c.OnPanic != nil {
				c.OnPanic("tag", r)
			}
			err = fmt.Errorf("panic while tagging %s: %v", path, r)
		}
	}()

	_, err = c.Tag(ctx, path)
	return err
}
