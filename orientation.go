package garmentag

import (
	"bytes"
	"image"

	"github.com/bep/imagemeta"
	"github.com/disintegration/imaging"
)

// EXIF orientation values (TIFF tag 0x0112), named after where row 0 and
// column 0 of the stored image end up.
const (
	orientationNormal      = 1 // TopLeft
	orientationTopRight    = 2
	orientationBottomRight = 3
	orientationBottomLeft  = 4
	orientationLeftTop     = 5
	orientationRightTop    = 6 // needs 90° clockwise turn
	orientationRightBottom = 7
	orientationLeftBottom  = 8 // needs 90° counter-clockwise turn
)

// metaFormats maps image.Decode format names to the formats imagemeta reads.
var metaFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"tiff": imagemeta.TIFF,
	"webp": imagemeta.WebP,
}

// readOrientation returns the EXIF orientation of the encoded image, or
// orientationNormal when there is none or it cannot be read.
func readOrientation(data []byte, format string) int {
	imgFormat, ok := metaFormats[format]
	if !ok || len(data) == 0 {
		return orientationNormal
	}

	orientation := orientationNormal
	_ = imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imgFormat,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Tag == "Orientation"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if v, ok := tagValueInt(ti.Value); ok && v >= orientationNormal && v <= orientationLeftBottom {
				orientation = v
			}
			return nil
		},
	})
	return orientation
}

// applyOrientation transforms img so that it displays upright.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case orientationTopRight:
		return imaging.FlipH(img)
	case orientationBottomRight:
		return imaging.Rotate180(img)
	case orientationBottomLeft:
		return imaging.FlipV(img)
	case orientationLeftTop:
		return imaging.Transpose(img)
	case orientationRightTop:
		return imaging.Rotate270(img)
	case orientationRightBottom:
		return imaging.Transverse(img)
	case orientationLeftBottom:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// tagValueInt extracts an integer from an EXIF tag value.
func tagValueInt(v any) (int, bool) {
	switch val := v.(type) {
	case uint16:
		return int(val), true
	case uint32:
		return int(val), true
	case uint8:
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case []uint16:
		if len(val) > 0 {
			return int(val[0]), true
		}
	case []any:
		if len(val) > 0 {
			return tagValueInt(val[0])
		}
	}
	return 0, false
}
