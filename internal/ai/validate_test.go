package ai

import "testing"

func TestValidTranslation(t *testing.T) {
	tests := []struct {
		name        string
		translation string
		want        bool
	}{
		{"normal sentence", "我今天需要买些日用品。", true},
		{"two characters", "你好", true},
		{"surrounding whitespace", "  明天见  ", true},
		{"empty", "", false},
		{"single period", ".", false},
		{"ellipsis", "...", false},
		{"punctuation only", "！？。", false},
		{"no CJK characters", "I need groceries.", false},
		{"single CJK character", "好", false},
		{"CJK with latin mix", "这个 word 很常见", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTranslation(tt.translation); got != tt.want {
				t.Errorf("ValidTranslation(%q) = %v, want %v", tt.translation, got, tt.want)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare JSON", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
