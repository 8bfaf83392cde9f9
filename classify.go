package garmentag

import (
	"context"
	"image"
	"log/slog"
)

// Classify labels the garment photo at path as UpperBody or LowerBody.
//
// The image is decoded, handed to the pose oracle once, and the visible
// upper and lower body landmarks are counted. A photo without a detected pose
// is labelled UpperBody and a warning is logged, so a batch is never held up
// by missing pose data. Errors wrap ErrFileNotFound, ErrDecode, ErrOracle,
// ErrLandmarkCount or ErrNoOracle.
func (c *Config) Classify(ctx context.Context, path string) (Category, error) {
	c.defaults()

	if err := statImage(path); err != nil {
		return UpperBody, err
	}
	data, err := readImage(path)
	if err != nil {
		return UpperBody, err
	}
	img, err := decodeImageData(path, data)
	if err != nil {
		return UpperBody, err
	}

	if c.Cache == nil {
		ent, err := c.classifyImage(ctx, path, img, "")
		return ent.Category, err
	}

	key := c.memoKey(data)
	var cached memoEntry
	if c.Cache.Get(ctx, key, &cached) {
		if cached.Source == SourceFallback {
			warnNoPose(path, true)
		}
		slog.Debug("garmentag: cached classification", "path", path, "category", cached.Category.String())
		c.emit(ClassificationEvent{Path: path, Category: cached.Category, Source: SourceCache, Counts: cached.Counts})
		return cached.Category, nil
	}

	simKey, hashed := c.similarKey(img)
	var similarTo string
	if hashed && c.Cache.Get(ctx, simKey, &similarTo) {
		slog.Debug("garmentag: similar image seen before", "path", path, "similar_to", similarTo)
	}

	ent, err := c.classifyImage(ctx, path, img, similarTo)
	if err != nil {
		return ent.Category, err
	}
	c.Cache.Set(ctx, key, ent)
	if hashed && similarTo == "" {
		c.Cache.Set(ctx, simKey, path)
	}
	return ent.Category, nil
}

func (c *Config) classifyImage(ctx context.Context, path string, img image.Image, similarTo string) (memoEntry, error) {
	set, err := detectPose(ctx, c.Oracle, img)
	if err != nil {
		slog.Debug("garmentag: pose oracle error", "path", path, "error", err.Error())
		return memoEntry{Category: UpperBody}, err
	}

	if set == nil {
		warnNoPose(path, false)
		c.emit(ClassificationEvent{Path: path, Category: UpperBody, Source: SourceFallback, SimilarTo: similarTo})
		return memoEntry{Category: UpperBody, Source: SourceFallback}, nil
	}

	counts := CountVisible(set)
	cat := counts.Category()
	slog.Debug("garmentag: pose result", "path", path,
		"upper", counts.Upper, "lower", counts.Lower, "category", cat.String())
	c.emit(ClassificationEvent{Path: path, Category: cat, Source: SourcePose, Counts: counts, SimilarTo: similarTo})
	return memoEntry{Category: cat, Source: SourcePose, Counts: counts}, nil
}

func warnNoPose(path string, cached bool) {
	slog.Warn("garmentag: no pose landmarks detected", "path", path, "category", UpperBody.String(), "cached", cached)
}

// ClassifyLandmarks applies the classification policy to a landmark set.
// A nil set (no pose) yields UpperBody.
func ClassifyLandmarks(set LandmarkSet) Category {
	if set == nil {
		return UpperBody
	}
	return CountVisible(set).Category()
}

// Category returns UpperBody only when strictly more upper than lower body
// landmarks are visible. Ties, 0/0 included, go to LowerBody.
func (lc LandmarkCounts) Category() Category {
	if lc.Upper > lc.Lower {
		return UpperBody
	}
	return LowerBody
}

func (c *Config) emit(ev ClassificationEvent) {
	if c.OnClassification != nil {
		c.OnClassification(ev)
	}
}
