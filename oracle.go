package garmentag

import (
	"context"
	"fmt"
	"image"
	"log/slog"
)

// Detector runs pose inference. A Detector is opened for a single
// classification and closed right after it.
type Detector interface {
	// Detect returns the landmarks of the single pose in img, or a nil set
	// when no pose is found.
	Detect(ctx context.Context, img image.Image) (LandmarkSet, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Oracle hands out detectors.
type Oracle interface {
	Open(ctx context.Context) (Detector, error)
}

// DetectFunc adapts a plain function to Oracle. Each Open returns a detector
// that calls the function and has nothing to release.
type DetectFunc func(ctx context.Context, img image.Image) (LandmarkSet, error)

// Open implements Oracle.
func (f DetectFunc) Open(context.Context) (Detector, error) { return funcDetector(f), nil }

type funcDetector DetectFunc

func (f funcDetector) Detect(ctx context.Context, img image.Image) (LandmarkSet, error) {
	return f(ctx, img)
}

func (funcDetector) Close() error { return nil }

// detectPose acquires a detector, runs one inference and releases the
// detector no matter how the inference ended.
func detectPose(ctx context.Context, oracle Oracle, img image.Image) (set LandmarkSet, err error) {
	if oracle == nil {
		return nil, ErrNoOracle
	}

	det, err := oracle.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: opening detector: %w", ErrOracle, err)
	}
	defer func() {
		if cerr := det.Close(); cerr != nil {
			slog.Warn("garmentag: closing detector", "error", cerr.Error())
		}
	}()

	set, err = det.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracle, err)
	}
	if set != nil && len(set) != LandmarkCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(set), LandmarkCount)
	}
	return set, nil
}
