package argallery

import (
	"bytes"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation is an EXIF orientation tag value (1 through 8). It says how the
// stored pixels must be transformed to appear upright.
type Orientation uint16

const (
	OrientationUp            Orientation = 1 // already upright
	OrientationUpMirrored    Orientation = 2 // flipped horizontally
	OrientationDown          Orientation = 3 // rotated 180°
	OrientationDownMirrored  Orientation = 4 // flipped vertically
	OrientationLeftMirrored  Orientation = 5 // transposed
	OrientationRight         Orientation = 6 // needs 90° clockwise
	OrientationRightMirrored Orientation = 7 // transversed
	OrientationLeft          Orientation = 8 // needs 90° counter-clockwise
)

// Reorient returns img transformed to be upright for the given orientation.
// Unknown orientations and OrientationUp return img unchanged.
func Reorient(img image.Image, o Orientation) image.Image {
	switch o {
	case OrientationUpMirrored:
		return transform.FlipH(img)
	case OrientationDown:
		return transform.FlipH(transform.FlipV(img))
	case OrientationDownMirrored:
		return transform.FlipV(img)
	case OrientationLeftMirrored:
		return imaging.Transpose(img)
	case OrientationRight:
		return imaging.Rotate270(img)
	case OrientationRightMirrored:
		return imaging.Transverse(img)
	case OrientationLeft:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// exifOrientation reads the EXIF orientation from JPEG, TIFF or raw EXIF
// data. It returns OrientationUp when the data carries no valid orientation.
func exifOrientation(data []byte) Orientation {
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return OrientationUp
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationUp
	}
	v, err := tag.Int(0)
	if err != nil || v < int(OrientationUp) || v > int(OrientationLeft) {
		return OrientationUp
	}
	return Orientation(v)
}
