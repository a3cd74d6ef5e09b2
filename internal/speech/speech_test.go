package speech

import "testing"

func TestFileName(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
	}{
		{"wav", "audio/wav", "audio.wav"},
		{"webm", "audio/webm", "audio.webm"},
		{"m4a", "audio/mp4", "audio.m4a"},
		{"ogg", "audio/ogg", "audio.ogg"},
		{"mp3", "audio/mpeg", "audio.mp3"},
		{"unknown defaults to mp3", "application/octet-stream", "audio.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fileName(tt.contentType); got != tt.want {
				t.Errorf("fileName(%q) = %q, want %q", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("", "alloy"); err == nil {
		t.Error("New() with empty API key should fail")
	}
}

func TestNewDefaultsVoice(t *testing.T) {
	s, err := New("test-key", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := s.DefaultVoice(); got != "alloy" {
		t.Errorf("DefaultVoice() = %q, want %q", got, "alloy")
	}
}
