package models

import (
	"math"
	"testing"
	"time"
)

func TestWordHasSentences(t *testing.T) {
	tests := []struct {
		name      string
		sentences []Sentence
		want      bool
	}{
		{
			name:      "no sentences",
			sentences: nil,
			want:      false,
		},
		{
			name:      "empty slice",
			sentences: []Sentence{},
			want:      false,
		},
		{
			name: "one sentence",
			sentences: []Sentence{
				{Text: "I bought some groceries.", Translation: "我买了一些食品杂货。"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Word{ID: "w1", Text: "grocery", Sentences: tt.sentences}
			if got := w.HasSentences(); got != tt.want {
				t.Errorf("Word.HasSentences() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWordActive(t *testing.T) {
	now := time.Now()
	deleted := Word{ID: "w1", Deleted: true, DeletedAt: &now}
	if deleted.Active() {
		t.Error("soft-deleted word should not be active")
	}

	active := Word{ID: "w2"}
	if !active.Active() {
		t.Error("word without delete flag should be active")
	}
}

func TestCheckInContainsWord(t *testing.T) {
	c := CheckIn{
		UserID:  "u1",
		Date:    "2026-01-15",
		WordIDs: []string{"a", "b"},
	}

	if !c.ContainsWord("a") {
		t.Error("ContainsWord(a) = false, want true")
	}
	if c.ContainsWord("c") {
		t.Error("ContainsWord(c) = true, want false")
	}
}

func TestTokenUsageAccumulation(t *testing.T) {
	u := TokenUsage{UserID: "u1"}
	u.Add(1000, 500)
	u.Add(2000, 1500)

	if u.InputTokens != 3000 {
		t.Errorf("InputTokens = %d, want 3000", u.InputTokens)
	}
	if u.OutputTokens != 2000 {
		t.Errorf("OutputTokens = %d, want 2000", u.OutputTokens)
	}

	want := 3.0*InputTokenPricePer1K + 2.0*OutputTokenPricePer1K
	if math.Abs(u.Cost()-want) > 1e-12 {
		t.Errorf("Cost() = %v, want %v", u.Cost(), want)
	}
}
