package album

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/podium/internal/domain/analyzer"
	"github.com/okian/podium/internal/domain/banner"
)

// FingerprintExt is the extension of stored fingerprint files.
const FingerprintExt = ".fp"

// LoadReference reads a reference fingerprint. A .fp file holds the text form
// of a fingerprint; any other file is decoded as a podium screenshot and its
// victor banner is fingerprinted.
func LoadReference(path string) (banner.Fingerprint, error) {
	if strings.EqualFold(filepath.Ext(path), FingerprintExt) {
		data, err := os.ReadFile(path)
		if err != nil {
			return banner.Fingerprint{}, fmt.Errorf("read reference %s: %w", path, err)
		}
		var fp banner.Fingerprint
		if err := fp.UnmarshalText(data); err != nil {
			return banner.Fingerprint{}, fmt.Errorf("reference %s: %w", path, err)
		}
		return fp, nil
	}

	img, err := Decode(path)
	if err != nil {
		return banner.Fingerprint{}, err
	}
	fp, err := analyzer.Reference(img)
	if err != nil {
		return banner.Fingerprint{}, fmt.Errorf("reference %s: %w", path, err)
	}
	return fp, nil
}

// SaveReference writes fp to path in its text form.
func SaveReference(path string, fp banner.Fingerprint) error {
	data, err := fp.MarshalText()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write reference %s: %w", path, err)
	}
	return nil
}
