package normalize

import "testing"

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// ISO 639-1 codes (passthrough)
		{"en", "en"},
		{"de", "de"},
		// ISO 639-2 codes
		{"eng", "en"},
		{"deu", "de"},
		{"ger", "de"}, // bibliographic variant
		// Locale codes
		{"en-US", "en"},
		{"en_GB", "en"},
		// Language names
		{"english", "en"},
		{"English", "en"},
		{"GERMAN", "de"},
		// Unrecognized values pass through lowercased
		{"klingon", "klingon"},
		{"", ""},
		{"  en  ", "en"},
	}

	for _, tt := range tests {
		if got := LanguageCode(tt.input); got != tt.expected {
			t.Errorf("LanguageCode(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFoldKey(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"Jane Doe", "jane doe", true},
		{"JANE DOE", "jane doe", true},
		{"Jérôme", "jerome", true},
		{"Jane Doe", "John Smith", false},
		{"  padded  ", "padded", true},
	}

	for _, tt := range tests {
		got := FoldKey(tt.a) == FoldKey(tt.b)
		if got != tt.same {
			t.Errorf("FoldKey(%q) == FoldKey(%q): got %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
}
