// Package garmentag labels garment photographs as upper-body or lower-body
// wear by counting visible pose landmarks, and records the label in the file
// name as a _U or _L suffix.
package garmentag

import "context"

// DefaultInputDir is the directory processed when the caller names none.
const DefaultInputDir = "INPUT"

// DefaultExtensions are the file extensions picked up by a batch run.
var DefaultExtensions = []string{".jpg"}

// Cache abstracts key-value caching (Redis, sync.Map, etc.)
type Cache interface {
	Key(prefix, value string) string
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
}

// Config holds all dependencies injected by the consumer.
type Config struct {
	Oracle Oracle // required for Classify: pose landmark source
	Cache  Cache  // optional: memoise categories of byte-identical files (nil = always ask the oracle)

	// Extensions lists the lower-case file extensions a batch run considers.
	// Default: DefaultExtensions.
	Extensions []string

	// Optional callbacks for metrics/logging.
	OnPanic          func(tag string, r any)
	OnClassification func(ClassificationEvent) // every classification decision
	OnTag            func(TagEvent)            // every successful rename
	OnFailure        func(ItemFailure)         // every file a batch run could not tag
}

// ClassificationEvent describes one classification decision.
type ClassificationEvent struct {
	Path     string
	Category Category
	Source   string // "pose", "fallback" or "cache"
	Counts   LandmarkCounts

	// SimilarTo names an earlier image of the run with the same perceptual
	// hash, when memoisation is on. It never decides the category.
	SimilarTo string
}

// TagEvent describes one successful rename.
type TagEvent struct {
	From     string
	To       string
	Category Category
}

// Classification sources reported in ClassificationEvent.Source.
const (
	SourcePose     = "pose"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
}
