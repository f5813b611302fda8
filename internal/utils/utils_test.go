package utils

import (
	"encoding/base64"
	"testing"
)

func TestSplitDataURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		mime    string
		payload string
	}{
		{name: "data url", input: "data:image/webp;base64,AAAA", mime: "image/webp", payload: "AAAA"},
		{name: "bare base64", input: "AAAA", mime: "", payload: "AAAA"},
		{name: "missing marker", input: "data:image/png,AAAA", mime: "", payload: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, payload := SplitDataURL(tt.input)
			if mime != tt.mime || payload != tt.payload {
				t.Errorf("expected (%q, %q), got (%q, %q)", tt.mime, tt.payload, mime, payload)
			}
		})
	}
}

func TestEnsureDataURL(t *testing.T) {
	if got := EnsureDataURL("AAAA", ""); got != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected data url %q", got)
	}
	if got := EnsureDataURL("data:image/jpeg;base64,AAAA", "image/png"); got != "data:image/jpeg;base64,AAAA" {
		t.Errorf("existing data url should be kept, got %q", got)
	}
}

func TestDecodeImagePayloadDetectsMime(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000000000")
	encoded := base64.StdEncoding.EncodeToString(png)

	data, mimeType, err := DecodeImagePayload(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(png) {
		t.Fatal("decoded bytes differ")
	}
	if mimeType != "image/png" {
		t.Errorf("expected image/png, got %q", mimeType)
	}

	_, mimeType, err = DecodeImagePayload("data:image/jpeg;base64," + encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mimeType != "image/jpeg" {
		t.Errorf("declared mime should win, got %q", mimeType)
	}

	if _, _, err := DecodeImagePayload("   "); err == nil {
		t.Error("expected error for empty payload")
	}
	if _, _, err := DecodeImagePayload("not base64!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestEstimateBase64Size(t *testing.T) {
	tests := []struct {
		encoded  string
		expected int64
	}{
		{encoded: "", expected: 0},
		{encoded: "AAAA", expected: 3},
		{encoded: "AAAAAA", expected: 5},
		{encoded: "AAAAA", expected: 4},
	}
	for _, tt := range tests {
		if got := EstimateBase64Size(tt.encoded); got != tt.expected {
			t.Errorf("len %d: expected %d, got %d", len(tt.encoded), tt.expected, got)
		}
	}
}
