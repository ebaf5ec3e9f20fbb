package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "cohort/pkg/errors"
	"cohort/pkg/model"
)

// DecodeJSON reads a single JSON document from the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return apperrors.TooLarge(fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("request body is empty")
		default:
			return apperrors.InvalidInput("invalid JSON body: " + err.Error())
		}
	}
	if decoder.More() {
		return apperrors.InvalidInput("request body must contain a single JSON object")
	}
	return nil
}

// ParseDateQuery reads a required YYYY-MM-DD query parameter.
func ParseDateQuery(r *http.Request, key string) (model.Date, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return model.Date{}, apperrors.InvalidInput(fmt.Sprintf("missing %s parameter", key))
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", key, raw))
	}
	return d, nil
}
