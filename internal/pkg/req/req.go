/*
Package req provides helper functions for request parsing and data binding.

It decodes JSON from HTTP request bodies and from WebSocket event payloads, and validates
the result with struct tags, so every inbound surface reports malformed input with the same
error codes.
*/
package req

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"linkhub/internal/pkg/errs"
)

// MaxRequestBodySize caps HTTP JSON bodies. Profile photos travel as data URLs, so it is
// larger than the photo limit.
const MaxRequestBodySize int64 = 1 << 20 // 1 MB

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindJSON decodes the JSON body of r into dst and validates it.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return Validate(dst)
}

// DecodePayload decodes an event payload into dst and validates it. Unknown fields are
// tolerated so older clients keep working.
func DecodePayload(payload json.RawMessage, dst any) *errs.CustomError {
	if len(bytes.TrimSpace(payload)) == 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	return Validate(dst)
}

// Validate checks the `validate` struct tags of dst.
func Validate(dst any) *errs.CustomError {
	if err := validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return errs.Wrap(errs.ErrUnknown, err)
		}
		return errs.Wrap(errs.ErrInvalidParams, err)
	}

	return nil
}
