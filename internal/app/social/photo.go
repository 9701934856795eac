package social

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"linkhub/internal/pkg/errs"
)

const (
	// MaxPhotoSizeKB is the maximum decoded size of a profile photo in kilobytes.
	MaxPhotoSizeKB = 512

	// MaxPhotoSize is the maximum decoded size of a profile photo in bytes.
	MaxPhotoSize = MaxPhotoSizeKB * 1024
)

// AllowedPhotoTypes defines the set of permitted MIME types for profile photos.
var AllowedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ValidatePhoto checks that photo is a base64 data URL of an allowed image type within the
// size limit. The declared type must match what the bytes actually are.
func ValidatePhoto(photo string) *errs.CustomError {
	invalid := errs.NewError(errs.ErrPhotoInvalid, MaxPhotoSizeKB)

	rest, ok := strings.CutPrefix(photo, "data:")
	if !ok {
		return invalid
	}

	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return invalid
	}

	declared, ok := strings.CutSuffix(strings.ToLower(header), ";base64")
	if !ok {
		return invalid
	}

	if _, ok := AllowedPhotoTypes[declared]; !ok {
		return invalid
	}

	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxPhotoSize+2 {
		return invalid
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 || len(data) > MaxPhotoSize {
		return invalid
	}

	if !mimetype.Detect(data).Is(declared) {
		return invalid
	}

	return nil
}
