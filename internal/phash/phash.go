package phash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"math/bits"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

// Hash kinds and crop regions tagged on every computed hash.
const (
	KindDifference = "difference-hash"
	KindAverage    = "average-hash"

	CropFull     = "full"
	CropCenter90 = "center-90%"
)

const (
	// MaxImageDimension is the maximum width or height we'll process.
	// Larger images are downscaled before hashing.
	MaxImageDimension = 4096

	// MaxImagePixels is the maximum total pixels (width * height) we'll
	// process. A 50MP image uses ~200MB decoded to RGBA.
	MaxImagePixels = 20_000_000

	dhashWidth  = 9
	dhashHeight = 8
	ahashSize   = 8
)

// Hash is one 64-bit perceptual hash tagged with its algorithm and the
// crop region it was computed over.
type Hash struct {
	Kind  string
	Crop  string
	Value uint64
}

// Fingerprint is everything derived from one thumbnail: an exact checksum
// of the raw bytes, the image aspect ratio, and four perceptual hashes
// (difference and average, each over the full image and a centered 90%
// crop).
type Fingerprint struct {
	Checksum    string
	AspectRatio float64
	Hashes      []Hash
}

// Hash returns the hash value for a (kind, crop) combination, or false
// when the fingerprint does not carry it.
func (f *Fingerprint) Hash(kind, crop string) (uint64, bool) {
	for _, h := range f.Hashes {
		if h.Kind == kind && h.Crop == crop {
			return h.Value, true
		}
	}
	return 0, false
}

// Hasher is the production fingerprint producer. The zero value is ready
// to use.
type Hasher struct{}

// Compute implements the producer contract consumed by the crawler.
func (Hasher) Compute(data []byte) (*Fingerprint, error) {
	return Compute(data)
}

// Compute derives the fingerprint set for one thumbnail. The same bytes
// always produce the same fingerprint.
func Compute(data []byte) (*Fingerprint, error) {
	if len(data) == 0 {
		return nil, errors.New("empty thumbnail data")
	}

	sum := sha256.Sum256(data)

	img, origWidth, origHeight, err := decodeConstrained(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail: %w", err)
	}
	if origWidth == 0 || origHeight == 0 {
		return nil, errors.New("thumbnail has no pixels")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	gray := imaging.Grayscale(img)

	cropWidth, cropHeight := width*9/10, height*9/10
	if cropWidth < 1 {
		cropWidth = 1
	}
	if cropHeight < 1 {
		cropHeight = 1
	}
	center := imaging.CropCenter(gray, cropWidth, cropHeight)

	return &Fingerprint{
		Checksum:    hex.EncodeToString(sum[:]),
		AspectRatio: float64(origWidth) / float64(origHeight),
		Hashes: []Hash{
			{Kind: KindDifference, Crop: CropFull, Value: differenceHash(gray)},
			{Kind: KindDifference, Crop: CropCenter90, Value: differenceHash(center)},
			{Kind: KindAverage, Crop: CropFull, Value: averageHash(gray)},
			{Kind: KindAverage, Crop: CropCenter90, Value: averageHash(center)},
		},
	}, nil
}

// Distance returns the Hamming distance between two 64-bit hashes.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// decodeConstrained decodes thumbnail bytes, downscaling oversized images
// before they are hashed. The pre-constraint dimensions are returned for
// the aspect ratio.
func decodeConstrained(data []byte) (img image.Image, width, height int, err error) {
	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pixels := width * height

	if width <= MaxImageDimension && height <= MaxImageDimension && pixels <= MaxImagePixels {
		return img, width, height, nil
	}

	// Constrain by max dimension first
	targetWidth, targetHeight := width, height
	if width > MaxImageDimension || height > MaxImageDimension {
		if width > height {
			targetWidth = MaxImageDimension
			targetHeight = height * MaxImageDimension / width
		} else {
			targetHeight = MaxImageDimension
			targetWidth = width * MaxImageDimension / height
		}
	}

	// Then constrain by total pixels if still too large
	targetPixels := targetWidth * targetHeight
	if targetPixels > MaxImagePixels {
		scale := float64(MaxImagePixels) / float64(targetPixels)
		targetWidth = int(float64(targetWidth) * scale)
		targetHeight = int(float64(targetHeight) * scale)
	}

	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	return imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos), width, height, nil
}

// differenceHash resizes to 9x8 and sets a bit per pixel pair when the
// left pixel is brighter than its right neighbor. Bits fill row-major,
// most significant first.
func differenceHash(img image.Image) uint64 {
	resized := imaging.Resize(img, dhashWidth, dhashHeight, imaging.Lanczos)

	var hash uint64
	for y := 0; y < dhashHeight; y++ {
		for x := 0; x < dhashWidth-1; x++ {
			hash <<= 1
			if resized.NRGBAAt(x, y).R > resized.NRGBAAt(x+1, y).R {
				hash |= 1
			}
		}
	}
	return hash
}

// averageHash resizes to 8x8 and sets a bit per pixel brighter than the
// mean. Bits fill row-major, most significant first.
func averageHash(img image.Image) uint64 {
	resized := imaging.Resize(img, ahashSize, ahashSize, imaging.Lanczos)

	var pixels [ahashSize * ahashSize]uint8
	var total int
	i := 0
	for y := 0; y < ahashSize; y++ {
		for x := 0; x < ahashSize; x++ {
			v := resized.NRGBAAt(x, y).R
			pixels[i] = v
			total += int(v)
			i++
		}
	}
	mean := float64(total) / float64(len(pixels))

	var hash uint64
	for _, v := range pixels {
		hash <<= 1
		if float64(v) > mean {
			hash |= 1
		}
	}
	return hash
}
