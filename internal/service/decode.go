package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	apperrors "go-cover-resolver/internal/errors"
	"go-cover-resolver/pkg/models"
)

// DecodeCoverRequest parses a generate-cover body.
//
// Missing or malformed JSON, and top-level JSON zero values (null, false,
// 0, "", []), are invalid requests. A field holding a zero value of any
// type counts as absent. Any other non-object body or non-string field is
// an internal error, as is a string that does not decode to valid UTF-8.
func DecodeCoverRequest(body []byte) (models.CoverRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return models.CoverRequest{}, apperrors.NewInvalidRequestError(MsgJSONNotProvided, nil)
	}

	if body[0] != '{' {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return models.CoverRequest{}, apperrors.NewInvalidRequestError(MsgJSONNotProvided, err)
		}
		if isZeroJSON(v) {
			return models.CoverRequest{}, apperrors.NewInvalidRequestError(MsgJSONNotProvided, nil)
		}
		msg := fmt.Sprintf("request body must be a JSON object, got %s", jsonKind(v))
		return models.CoverRequest{}, apperrors.NewInternalError(msg, nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return models.CoverRequest{}, apperrors.NewInternalError(err.Error(), err)
	}

	var req models.CoverRequest
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"title", &req.Title},
		{"description", &req.Description},
		{"titulo", &req.LegacyTitle},
		{"descricao", &req.LegacyDescription},
	} {
		v, err := stringField(fields, f.name)
		if err != nil {
			return models.CoverRequest{}, apperrors.NewInternalError(err.Error(), err)
		}
		*f.dst = v
	}

	req.Normalize()
	return req, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		if isZeroJSON(v) {
			return "", nil
		}
		return "", fmt.Errorf("field %q must be a string, got %s", name, jsonKind(v))
	}
	if !validStringLiteral(raw) {
		return "", fmt.Errorf("field %q is not valid UTF-8", name)
	}
	return s, nil
}

func isZeroJSON(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func jsonKind(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "null"
}

// validStringLiteral reports whether a JSON string literal decodes without
// substitution: raw bytes are valid UTF-8 and every \u surrogate escape is
// part of a high/low pair. encoding/json silently turns either into U+FFFD.
func validStringLiteral(raw []byte) bool {
	if !utf8.Valid(raw) {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			continue
		}
		i++
		if i >= len(raw) || raw[i] != 'u' {
			continue
		}
		r, ok := hexRune(raw[i+1:])
		if !ok {
			return false
		}
		i += 4
		if !utf16.IsSurrogate(r) {
			continue
		}
		if i+2 >= len(raw) || raw[i+1] != '\\' || raw[i+2] != 'u' {
			return false
		}
		low, ok := hexRune(raw[i+3:])
		if !ok || utf16.DecodeRune(r, low) == utf8.RuneError {
			return false
		}
		i += 6
	}
	return true
}

func hexRune(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	n, err := strconv.ParseUint(string(b[:4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
