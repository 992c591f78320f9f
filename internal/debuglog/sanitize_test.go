// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestSanitizeData_RedactsByKeySubstring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    map[string]interface{}
		redacted []string
		kept     map[string]interface{}
	}{
		{
			name:     "exact sensitive keys",
			input:    map[string]interface{}{"password": "x", "token": "y", "ok": "z"},
			redacted: []string{"password", "token"},
			kept:     map[string]interface{}{"ok": "z"},
		},
		{
			name:     "substring match is case-insensitive",
			input:    map[string]interface{}{"ApiKey": "x", "refreshToken": "y", "SECRET_SAUCE": "z"},
			redacted: []string{"ApiKey", "refreshToken", "SECRET_SAUCE"},
		},
		{
			name: "nested object under sensitive key redacted wholesale",
			input: map[string]interface{}{
				"credentials_token": map[string]interface{}{"inner": "v"},
			},
			redacted: []string{"credentials_token"},
		},
		{
			name:  "benign keys untouched",
			input: map[string]interface{}{"username": "alice", "count": float64(3)},
			kept:  map[string]interface{}{"username": "alice", "count": float64(3)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, n := sanitizeData(tt.input)
			var got map[string]interface{}
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if n != len(tt.redacted) {
				t.Errorf("redaction count = %d, want %d", n, len(tt.redacted))
			}
			for _, k := range tt.redacted {
				if got[k] != RedactedPlaceholder {
					t.Errorf("key %q not redacted: %v", k, got[k])
				}
			}
			for k, want := range tt.kept {
				if got[k] != want {
					t.Errorf("key %q = %v, want %v", k, got[k], want)
				}
			}
		})
	}
}

func TestSanitizeData_DeepNesting(t *testing.T) {
	t.Parallel()

	raw, n := sanitizeData(map[string]interface{}{
		"outer": map[string]interface{}{
			"list": []interface{}{
				map[string]interface{}{"session_token": "abc", "id": float64(1)},
			},
		},
	})
	if n != 1 {
		t.Errorf("redaction count = %d, want 1", n)
	}
	s := string(raw)
	if strings.Contains(s, "abc") {
		t.Errorf("sensitive value survived: %s", s)
	}
	if !strings.Contains(s, RedactedPlaceholder) {
		t.Errorf("placeholder missing: %s", s)
	}
}

func TestSanitizeData_Idempotent(t *testing.T) {
	t.Parallel()

	first, n1 := sanitizeData(map[string]interface{}{"password": "x"})
	if n1 != 1 {
		t.Fatalf("first pass redacted %d fields", n1)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, n2 := sanitizeData(decoded)
	if n2 != 1 {
		// The key still matches; the value must stay the placeholder.
		t.Logf("second pass redacted %d fields", n2)
	}
	var again map[string]interface{}
	if err := json.Unmarshal(second, &again); err != nil {
		t.Fatalf("unmarshal second: %v", err)
	}
	if again["password"] != RedactedPlaceholder {
		t.Errorf("second pass changed the placeholder: %v", again["password"])
	}
}

func TestSanitizeData_NilAndFailure(t *testing.T) {
	t.Parallel()

	raw, n := sanitizeData(nil)
	if raw != nil || n != 0 {
		t.Errorf("nil input: got %s, %d", raw, n)
	}

	raw, _ = sanitizeData(make(chan int))
	var marker map[string]string
	if err := json.Unmarshal(raw, &marker); err != nil {
		t.Fatalf("marker unmarshal: %v", err)
	}
	if marker["error"] != "Failed to sanitize data" {
		t.Errorf("marker error = %q", marker["error"])
	}
	if marker["original"] == "" {
		t.Error("marker original empty")
	}
}

func TestSanitizeUserPayload(t *testing.T) {
	t.Parallel()

	in := map[string]interface{}{
		"password":   "x",
		"apiKey":     "y",
		"creditCard": "4111",
		"ssn":        "000",
		"token":      "t",
		"email":      "alice@example.com",
		"action":     "click",
	}
	out := SanitizeUserPayload(in)

	for _, deleted := range []string{"password", "apiKey", "creditCard", "ssn", "token"} {
		if _, present := out[deleted]; present {
			t.Errorf("field %q should be deleted, got %v", deleted, out[deleted])
		}
	}
	if out["email"] != "a***@example.com" {
		t.Errorf("email = %v, want a***@example.com", out["email"])
	}
	if out["action"] != "click" {
		t.Errorf("action = %v", out["action"])
	}

	// The input map must be untouched.
	if in["password"] != "x" || in["email"] != "alice@example.com" {
		t.Error("input map was modified")
	}

	if SanitizeUserPayload(nil) != nil {
		t.Error("nil payload should stay nil")
	}
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"alice@example.com", "a***@example.com"},
		{"b@x.io", "b***@x.io"},
		{"no-at-sign", "***"},
		{"@leading", "***"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashUserID(t *testing.T) {
	t.Parallel()

	a := HashUserID("user-42")
	b := HashUserID("user-42")
	c := HashUserID("user-43")

	if a == "" {
		t.Fatal("empty hash")
	}
	if a != b {
		t.Errorf("hash not deterministic: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("distinct inputs collided: %q", a)
	}
	if strings.Contains(a, "user-42") {
		t.Error("hash leaks the raw identifier")
	}
	if HashUserID("") != "" {
		t.Error("empty input should hash to empty")
	}
}
