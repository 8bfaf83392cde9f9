package garmentag

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// statImage fails with ErrFileNotFound unless path names an existing file.
func statImage(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	return nil
}

// decodeImage reads and decodes the image at path and turns it upright
// according to its EXIF orientation.
func decodeImage(path string) (image.Image, error) {
	data, err := readImage(path)
	if err != nil {
		return nil, err
	}
	return decodeImageData(path, data)
}

func readImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return data, nil
}

// decodeImageData decodes the bytes read from path.
func decodeImageData(path string, data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	if o := readOrientation(data, format); o != orientationNormal {
		slog.Debug("garmentag: applying exif orientation", "path", path, "orientation", o)
		img = applyOrientation(img, o)
	}
	return img, nil
}
