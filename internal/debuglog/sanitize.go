// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
)

// RedactedPlaceholder replaces the value of any sensitive field.
const RedactedPlaceholder = "[REDACTED]"

// sensitiveKeyParts are matched as case-insensitive substrings of map
// keys; a match redacts the whole value, including nested structures.
var sensitiveKeyParts = []string{"password", "token", "key", "secret"}

// deletedUserFields are removed outright (not just redacted) from
// user-action payloads before the generic redaction pass.
var deletedUserFields = []string{"password", "token", "apiKey", "creditCard", "ssn"}

// sanitizeData converts an arbitrary caller payload into the JSON that
// an Entry stores. It never returns an error: non-serializable input
// (cycles, funcs, channels) degrades to the failure marker. The second
// return value counts fields replaced by the redaction placeholder.
func sanitizeData(v interface{}) (json.RawMessage, int) {
	if v == nil {
		return nil, 0
	}

	raw, err := marshalSafely(v)
	if err != nil {
		return failureMarker(v), 0
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return failureMarker(v), 0
	}

	redacted := 0
	decoded = redactValue("", decoded, &redacted)

	out, err := json.Marshal(decoded)
	if err != nil {
		return failureMarker(v), 0
	}
	return out, redacted
}

// marshalSafely marshals v while converting any encoder panic (goccy
// panics on some exotic inputs instead of returning an error) into an
// error result.
func marshalSafely(v interface{}) (raw json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("marshal panic: %v", r)
		}
	}()
	raw, err = json.Marshal(v)
	return raw, err
}

// failureMarker builds the sanitize-failure object. The original value
// is carried as its string coercion only, which is always serializable.
func failureMarker(v interface{}) json.RawMessage {
	marker := map[string]string{
		"error":    "Failed to sanitize data",
		"original": coerceString(v),
	}
	// A map[string]string cannot fail to marshal.
	raw, _ := json.Marshal(marker)
	return raw
}

// coerceString formats v without panicking, even for values whose
// String method misbehaves.
func coerceString(v interface{}) (s string) {
	defer func() {
		if recover() != nil {
			s = "<unprintable>"
		}
	}()
	return fmt.Sprintf("%v", v)
}

// redactValue walks a decoded JSON value. Map values under a sensitive
// key are replaced wholesale; arrays are walked element-wise; primitives
// pass through unchanged. Redaction is idempotent: the placeholder
// string contains no sensitive key, so a second pass is a no-op.
func redactValue(key string, v interface{}, redacted *int) interface{} {
	if key != "" && isSensitiveKey(key) {
		*redacted++
		return RedactedPlaceholder
	}

	switch val := v.(type) {
	case map[string]interface{}:
		for k, inner := range val {
			val[k] = redactValue(k, inner, redacted)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = redactValue("", inner, redacted)
		}
		return val
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// SanitizeUserPayload prepares a user-action payload for logging. It is
// stricter than the generic redaction: known-sensitive fields are
// deleted rather than redacted, an email field is partially masked, and
// the remaining fields go through the usual key-based redaction. The
// input map is not modified.
func SanitizeUserPayload(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return nil
	}

	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		out[k] = v
	}

	for _, field := range deletedUserFields {
		delete(out, field)
	}

	if email, ok := out["email"].(string); ok {
		out["email"] = MaskEmail(email)
	}

	redacted := 0
	for k, v := range out {
		out[k] = redactValue(k, v, &redacted)
	}
	return out
}

// MaskEmail keeps the first character of the local part and the domain:
// "alice@example.com" becomes "a***@example.com". Strings without an
// "@" after the first character are masked entirely.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// HashUserID produces a short, deterministic, non-reversible label for
// correlating a user's events without storing the raw identifier. This
// is a correlation aid, not a security boundary; xxhash is deliberately
// chosen over a cryptographic hash.
func HashUserID(userID string) string {
	if userID == "" {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64String(userID), 36)
}
