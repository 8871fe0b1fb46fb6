package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cardsense/cardsense/internal/apperrors"
)

const (
	invalidResponseMessage = "Unexpected response format from server"
	csrfExpiredMessage     = "Session expired. Please try again."
)

// decodeFunc turns a successful response into the domain value and an optional message.
// It returns false when the body is not one of the shapes the endpoint is documented to return.
type decodeFunc[T any] func(res *RawResponse) (T, string, bool)

// call is the template shared by every domain function: send, map failures, decode successes.
// action completes the generic failure message "Failed to <action> (<status>)".
func call[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions, action string, decode func(*RawResponse) (T, string, bool)) Response[T] {
	res, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		c.logger.Warn("api request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return networkFailure[T](err)
	}

	if !res.OK() {
		detail := errorFromResponse(res, action)
		c.logger.Debug("api returned an error",
			slog.String("endpoint", endpoint),
			slog.Int("status", res.StatusCode),
			slog.String("code", string(detail.Code)),
		)
		return fail[T](detail)
	}

	data, message, ok := decode(res)
	if !ok {
		c.logger.Warn("unexpected response shape", slog.String("endpoint", endpoint))
		return fail[T](&ErrorDetail{
			Code:       apperrors.ErrCodeInvalidResponse,
			Message:    invalidResponseMessage,
			StatusCode: res.StatusCode,
		})
	}
	return succeed(data, message)
}

func networkFailure[T any](err error) Response[T] {
	return fail[T](&ErrorDetail{
		Code:    apperrors.ErrCodeNetworkError,
		Message: fmt.Sprintf("Network error: %v", err),
	})
}

// errorFromResponse builds the error for a non-2xx response.
//
// The message is the first non-empty of: error.message (or error when it is a string), detail,
// message, the first field level validation error, and finally "Failed to <action> (<status>)".
// A 403 whose message mentions CSRF is reported as CSRF_ERROR; by then the request wrapper has
// already retried with a fresh token.
func errorFromResponse(res *RawResponse, action string) *ErrorDetail {
	raw := parseBody(res.Body)
	obj := asObject(raw)

	var errObj map[string]json.RawMessage
	message := ""
	if e, found := obj["error"]; found {
		if s := asString(e); s != "" {
			message = s
		} else if errObj = asObject(e); errObj != nil {
			message = asString(errObj["message"])
		}
	}
	if message == "" {
		message = asString(obj["detail"])
	}
	if message == "" {
		message = asString(obj["message"])
	}
	if message == "" && errObj != nil {
		message = firstFieldError(errObj["details"])
	}
	if message == "" {
		message = firstFieldError(raw)
	}
	if message == "" {
		message = fmt.Sprintf("Failed to %s (%d)", action, res.StatusCode)
	}

	code := apperrors.FromStatus(res.StatusCode)
	if code == apperrors.ErrCodeForbidden && strings.Contains(message, "CSRF") {
		code = apperrors.ErrCodeCSRFError
		message = csrfExpiredMessage
	}

	return &ErrorDetail{
		Code:       code,
		Message:    message,
		Details:    errorDetails(raw, obj, errObj),
		StatusCode: res.StatusCode,
	}
}

// errorDetails keeps the most specific structure available: error.details, error, or the whole body
func errorDetails(raw json.RawMessage, obj, errObj map[string]json.RawMessage) any {
	candidates := []json.RawMessage{raw}
	if e, found := obj["error"]; found {
		candidates = append([]json.RawMessage{e}, candidates...)
	}
	if d, found := errObj["details"]; found {
		candidates = append([]json.RawMessage{d}, candidates...)
	}
	for _, c := range candidates {
		if isNull(c) {
			continue
		}
		var v any
		if err := json.Unmarshal(c, &v); err == nil {
			return v
		}
	}
	return nil
}

// parseBody returns the trimmed body when it is valid JSON, otherwise nil.
// Empty bodies and HTML error pages are not errors.
func parseBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

func isObject(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func asObject(raw json.RawMessage) map[string]json.RawMessage {
	if !isObject(raw) {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func asString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

type jsonField struct {
	key   string
	value json.RawMessage
}

// orderedFields returns the members of a JSON object in document order
func orderedFields(raw json.RawMessage) []jsonField {
	if !isObject(raw) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var fields []jsonField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fields
		}
		key, _ := keyTok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fields
		}
		fields = append(fields, jsonField{key: key, value: value})
	}
	return fields
}

// firstFieldError finds the first validation message in a field error map such as
// {"year_month": ["Enter a valid month."], "amount": ["Must be positive."]}, descending into nested
// serializer errors. Document order decides which field is first.
func firstFieldError(raw json.RawMessage) string {
	for _, f := range orderedFields(raw) {
		if isArray(f.value) {
			var msgs []json.RawMessage
			if err := json.Unmarshal(f.value, &msgs); err == nil && len(msgs) > 0 {
				if s := asString(msgs[0]); s != "" {
					return s
				}
			}
			continue
		}
		if isObject(f.value) {
			if s := firstFieldError(f.value); s != "" {
				return s
			}
		}
	}
	return ""
}

// envelopeMessage returns the optional top level message of a success envelope
func envelopeMessage(obj map[string]json.RawMessage) string {
	return asString(obj["message"])
}

// decodeList accepts the three list shapes the backend uses:
// {"success": true, "data": [...]}, a bare array, and {"data": [...]}.
func decodeList[T any](res *RawResponse) ([]T, string, bool) {
	raw := parseBody(res.Body)
	var list json.RawMessage
	var message string
	switch {
	case isArray(raw):
		list = raw
	case isObject(raw):
		obj := asObject(raw)
		if d := obj["data"]; isArray(d) {
			list = d
			message = envelopeMessage(obj)
		}
	}
	if list == nil {
		return nil, "", false
	}

	items := []T{}
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, "", false
	}
	return items, message, true
}

// bareRule decides whether an object endpoint may answer with the record itself instead of an envelope
type bareRule int

const (
	bareReject    bareRule = iota // only {"success": true, "data": {...}} or {"data": {...}}
	bareAccept                    // any other object is the record
	bareRequireID                 // any other object with an "id" member is the record
)

// isEnvelope reports whether obj is a {"success": ...} envelope, which is never a record itself
func isEnvelope(obj map[string]json.RawMessage) bool {
	_, found := obj["success"]
	return found
}

// decodeObject accepts {"success": true, "data": {...}} and {"data": {...}}, plus the bare record
// when rule allows it.
func decodeObject[T any](rule bareRule) decodeFunc[T] {
	return func(res *RawResponse) (T, string, bool) {
		var zero T
		raw := parseBody(res.Body)
		obj := asObject(raw)
		if obj == nil {
			return zero, "", false
		}

		target := raw
		message := ""
		if d := obj["data"]; isObject(d) {
			target = d
			message = envelopeMessage(obj)
		} else if isEnvelope(obj) {
			return zero, "", false
		} else {
			switch rule {
			case bareReject:
				return zero, "", false
			case bareRequireID:
				if isNull(obj["id"]) {
					return zero, "", false
				}
			}
		}

		var out T
		if err := json.Unmarshal(target, &out); err != nil {
			return zero, "", false
		}
		return out, message, true
	}
}

// decodeCreated decodes the answer to a create request. The record may come enveloped or bare; an
// envelope without a data object still reports success, with nil data and the envelope's message.
func decodeCreated[T any](res *RawResponse) (*T, string, bool) {
	obj := asObject(parseBody(res.Body))
	if obj == nil {
		return nil, "", false
	}
	if isEnvelope(obj) && !isObject(obj["data"]) {
		return nil, envelopeMessage(obj), true
	}

	record, message, ok := decodeObject[T](bareAccept)(res)
	if !ok {
		return nil, "", false
	}
	return &record, message, true
}

// decodeDeleted never rejects a body: for deletes the status code alone decides success, a JSON body
// only contributes data and message.
func decodeDeleted(defaultMessage string) decodeFunc[any] {
	return func(res *RawResponse) (any, string, bool) {
		obj := asObject(parseBody(res.Body))
		var data any
		if d, found := obj["data"]; found && !isNull(d) {
			_ = json.Unmarshal(d, &data)
		}
		message := envelopeMessage(obj)
		if message == "" {
			message = defaultMessage
		}
		return data, message, true
	}
}
