package siteconfig

import (
	"context"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantType    string
		wantPayload string
		wantErr     bool
	}{
		{"base64 png", "data:image/png;base64,aGVsbG8=", "image/png", "hello", false},
		{"plain text payload", "data:text/plain,hello", "text/plain", "hello", false},
		{"missing media type", "data:;base64,aGVsbG8=", "application/octet-stream", "hello", false},
		{"no comma", "data:image/png;base64", "", "", true},
		{"bad base64", "data:image/png;base64,$$$", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, payload, err := decodeDataURI(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeDataURI(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeDataURI(%q): %v", tt.input, err)
			}
			if contentType != tt.wantType {
				t.Fatalf("content type = %q, want %q", contentType, tt.wantType)
			}
			if string(payload) != tt.wantPayload {
				t.Fatalf("payload = %q, want %q", payload, tt.wantPayload)
			}
		})
	}
}

func TestOffloadDisabledIsIdentity(t *testing.T) {
	var storage *MediaStorage

	doc := map[string]any{
		"backgroundImage": inlinePayload(200000),
		"avatar":          "https://example.com/avatar.png",
	}
	got := storage.OffloadInlineMedia(context.Background(), doc)
	if got["backgroundImage"] != doc["backgroundImage"] || got["avatar"] != doc["avatar"] {
		t.Fatal("unconfigured offload must leave the document untouched")
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"audio/mpeg", ".mp3"},
		{"video/mp4", ".mp4"},
		{"application/x-unknown", ".bin"},
	}
	for _, tt := range tests {
		if got := extensionFor(tt.contentType); got != tt.want {
			t.Fatalf("extensionFor(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}
