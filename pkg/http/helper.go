package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "msktravels/pkg/errors"
)

// DecodeJSON reads a JSON request body into target. An empty body is
// accepted when allowEmpty is set and leaves target untouched.
func DecodeJSON(r *http.Request, target any, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return apperrors.InvalidInput("request body is required")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return apperrors.InvalidInput("request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New("PAYLOAD_TOO_LARGE", "request body too large", http.StatusRequestEntityTooLarge)
		}
		return apperrors.InvalidInput("invalid JSON format: " + err.Error())
	}

	return nil
}
