package garmentag

import (
	"path/filepath"
	"strings"
)

// ImageRecord is a file system entry on its way through the organizer.
type ImageRecord struct {
	Path          string
	Dir           string
	BaseName      string // file name without extension
	Ext           string // extension including the dot, may be empty
	AlreadyTagged bool
}

// NewImageRecord splits path into its parts.
func NewImageRecord(path string) *ImageRecord {
	dir, file := filepath.Split(path)
	name, ext := splitExt(file)
	return &ImageRecord{
		Path:          path,
		Dir:           dir,
		BaseName:      name,
		Ext:           ext,
		AlreadyTagged: HasTag(name),
	}
}

// splitExt splits file into name and extension. Leading dots belong to the
// name, so ".jpg" has no extension.
func splitExt(file string) (name, ext string) {
	trimmed := strings.TrimLeft(file, ".")
	ext = filepath.Ext(trimmed)
	return file[:len(file)-len(ext)], ext
}

// HasTag reports whether a base name (without extension) already ends in a
// category suffix.
func HasTag(name string) bool {
	return strings.HasSuffix(name, UpperSuffix) || strings.HasSuffix(name, LowerSuffix)
}

// TaggedName returns the file name for base name and extension with the
// suffix of cat inserted before the extension.
func TaggedName(name, ext string, cat Category) string {
	return name + cat.Suffix() + ext
}
