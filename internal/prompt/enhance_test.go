package prompt

import (
	"errors"
	"testing"
)

func TestEnhance(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		style    string
		expected string
	}{
		{
			name:     "realistic",
			prompt:   "a cat",
			style:    "realistic",
			expected: "photorealistic, highly detailed, professional photography, DSLR, 8K resolution, a cat, high quality, detailed, masterpiece",
		},
		{
			name:     "anime",
			prompt:   "a knight at sunset",
			style:    "anime",
			expected: "anime style, manga art, Japanese animation, vibrant colors, clean lines, a knight at sunset, high quality, detailed, masterpiece",
		},
		{
			name:     "unknown style",
			prompt:   "a cat",
			style:    "baroque",
			expected: "a cat, high quality, detailed, masterpiece",
		},
		{
			name:     "empty style",
			prompt:   "a cat",
			style:    "",
			expected: "a cat, high quality, detailed, masterpiece",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Enhance(tt.prompt, tt.style)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestEnhanceIsDeterministic(t *testing.T) {
	first, _ := Enhance("a lighthouse in fog", "watercolor")
	for i := 0; i < 10; i++ {
		next, _ := Enhance("a lighthouse in fog", "watercolor")
		if next != first {
			t.Fatalf("expected %q, got %q", first, next)
		}
	}
}

func TestEnhanceRejectsHarmfulPrompt(t *testing.T) {
	for _, p := range []string{"BLOOD moon", "a weapon rack", "NSFW art", "bloodhound puppy"} {
		if _, err := Enhance(p, "realistic"); !errors.Is(err, ErrUnsafePrompt) {
			t.Errorf("prompt %q: expected ErrUnsafePrompt, got %v", p, err)
		}
	}
}

func TestEnhanceUsesNarrowerList(t *testing.T) {
	// kill, death and terror are blocked by moderation but not here
	for _, p := range []string{"kill switch", "death valley", "terror bird"} {
		if _, err := Enhance(p, "realistic"); err != nil {
			t.Errorf("prompt %q: unexpected error %v", p, err)
		}
	}
}

func TestStyles(t *testing.T) {
	styles := Styles()
	if len(styles) != 10 {
		t.Fatalf("expected 10 styles, got %d", len(styles))
	}
	for _, style := range styles {
		if style.Descriptor == "" {
			t.Errorf("style %q has no descriptor", style.ID)
		}
	}
	if got := DisplayName("oil-painting"); got != "Oil Painting" {
		t.Errorf("expected Oil Painting, got %q", got)
	}
	if got := CategoryForStyle("pixel-art"); got != "Digital Art" {
		t.Errorf("expected Digital Art, got %q", got)
	}
	if got := CategoryForStyle("baroque"); got != GeneralCategory {
		t.Errorf("expected General, got %q", got)
	}
}
