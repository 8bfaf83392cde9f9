package garmentag

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound      = errors.New("image file not found")
	ErrDecode            = errors.New("could not decode image")
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrRename            = errors.New("rename failed")
	ErrTargetExists      = errors.New("target already exists")
	ErrLandmarkCount     = errors.New("unexpected landmark count")
	ErrOracle            = errors.New("pose oracle failed")
	ErrNoOracle          = errors.New("no pose oracle configured")
)

// RenameError reports a failed rename together with both paths.
// It matches ErrRename and the underlying cause under errors.Is.
type RenameError struct {
	Old string
	New string
	Err error
}

func (e *RenameError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("renaming %s to %s: %v", e.Old, e.New, e.Err)
}

func (e *RenameError) Unwrap() []error { return []error{ErrRename, e.Err} }
