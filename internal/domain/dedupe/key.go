package dedupe

import (
	"fmt"
	"image"
	"time"

	"github.com/corona10/goimagehash"
)

// hashSize is the side length of the difference hash grid.
const hashSize = 16

// Key builds the dedupe key of a screenshot: its capture minute plus a
// perceptual hash of its pixels. Re-encoded or renamed copies of one capture
// share a key; distinct rounds saved in the same minute do not.
func Key(takenAt time.Time, img image.Image) (string, error) {
	hash, err := goimagehash.ExtDifferenceHash(img, hashSize, hashSize)
	if err != nil {
		return "", fmt.Errorf("hash screenshot: %w", err)
	}
	return takenAt.UTC().Format(time.RFC3339) + "/" + hash.ToString(), nil
}
