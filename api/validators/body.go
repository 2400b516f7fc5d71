package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
)

// DecodeJSONBody reads exactly one JSON object into dest and validates it.
// Unknown fields, trailing data and type mismatches are MALFORMED_PAYLOAD;
// failed validate tags come back from ValidateStruct.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return malformed(errors.New("trailing data"), "request body must hold a single JSON object")
	}
	return ValidateStruct(dest)
}

func malformed(err error, reason string) error {
	return pkgerrors.Wrap(pkgerrors.CodeMalformedPayload, err, "invalid request body").
		WithDetails(map[string][]string{"body": {reason}})
}

func decodeError(err error) error {
	var (
		maxErr    *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large").
			WithDetails(map[string][]string{"body": {fmt.Sprintf("must be at most %d bytes", maxErr.Limit)}})
	case errors.Is(err, io.EOF):
		return pkgerrors.Wrap(pkgerrors.CodeMalformedPayload, err, "request body is empty")
	case errors.Is(err, io.ErrUnexpectedEOF):
		return malformed(err, "request body is truncated")
	case errors.As(err, &syntaxErr):
		return malformed(err, fmt.Sprintf("syntax error at byte %d", syntaxErr.Offset))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return pkgerrors.Wrap(pkgerrors.CodeMalformedPayload, err, "invalid request body").
			WithDetails(map[string][]string{field: {"must be " + typeErr.Type.String()}})
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return malformed(err, strings.TrimPrefix(err.Error(), "json: "))
	}
	return malformed(err, err.Error())
}
