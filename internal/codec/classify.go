package codec

import (
	"image"

	"golang.org/x/image/draw"
)

// Bucket selects the target encoding for an image.
type Bucket int

const (
	// LossyOpaque images are written as progressive JPEG.
	LossyOpaque Bucket = iota
	// LosslessAlpha images are written as PNG at maximum compression.
	LosslessAlpha
)

func (b Bucket) String() string {
	switch b {
	case LossyOpaque:
		return "jpeg"
	case LosslessAlpha:
		return "png"
	default:
		return "unknown"
	}
}

// Ext returns the conventional file extension of the bucket's format.
func (b Bucket) Ext() string {
	if b == LosslessAlpha {
		return ".png"
	}
	return ".jpg"
}

// Classify puts images with an alpha channel, gray+alpha, or a palette with
// transparent entries into LosslessAlpha; everything else is LossyOpaque.
func Classify(img Image) Bucket {
	switch img.Mode {
	case "RGBA", "LA":
		return LosslessAlpha
	case "P":
		if img.HasTransparency {
			return LosslessAlpha
		}
	}
	return LossyOpaque
}

// Canonical converts pixels to the representation the bucket's encoder
// expects: NRGBA for LosslessAlpha, opaque RGBA for LossyOpaque.
func Canonical(img image.Image, bucket Bucket) image.Image {
	b := img.Bounds()
	if bucket == LosslessAlpha {
		if n, ok := img.(*image.NRGBA); ok {
			return n
		}
		dst := image.NewNRGBA(b)
		draw.Draw(dst, b, img, b.Min, draw.Src)
		return dst
	}

	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

type opaquer interface {
	Opaque() bool
}

// inspect derives a color-mode name and the transparency flag from the
// concrete pixel type the decoder produced.
func inspect(img image.Image) (string, bool) {
	switch p := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA:
		return "RGBA", !isOpaque(img)
	case *image.RGBA, *image.RGBA64:
		if isOpaque(img) {
			return "RGB", false
		}
		return "RGBA", true
	case *image.Alpha, *image.Alpha16:
		return "LA", !isOpaque(img)
	case *image.Gray, *image.Gray16:
		return "L", false
	case *image.Paletted:
		return "P", paletteHasTransparency(p)
	case *image.CMYK:
		return "CMYK", false
	default:
		return "RGB", false
	}
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(opaquer); ok {
		return o.Opaque()
	}
	return true
}

func paletteHasTransparency(p *image.Paletted) bool {
	for _, c := range p.Palette {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}
