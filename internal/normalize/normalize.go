// Package normalize provides small normalization helpers for parsed metadata
// values: language codes and case-insensitive comparison keys.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// iso639_2to1 maps common ISO 639-2 (3-letter) codes to ISO 639-1 codes.
// Bibliographic variants included where they differ.
var iso639_2to1 = map[string]string{
	"eng": "en", "spa": "es", "fra": "fr", "deu": "de", "ita": "it",
	"por": "pt", "nld": "nl", "rus": "ru", "jpn": "ja", "zho": "zh",
	"kor": "ko", "ara": "ar", "hin": "hi", "pol": "pl", "swe": "sv",
	"nor": "no", "dan": "da", "fin": "fi", "tur": "tr", "ell": "el",
	"heb": "he", "ces": "cs", "hun": "hu", "ron": "ro", "ukr": "uk",
	"vie": "vi", "ind": "id", "tha": "th", "cat": "ca", "bul": "bg",
	// Bibliographic codes.
	"ger": "de", "fre": "fr", "dut": "nl", "chi": "zh", "cze": "cs",
	"gre": "el", "rum": "ro",
}

// languageNameToCode maps common English language names to ISO 639-1 codes.
var languageNameToCode = map[string]string{
	"english": "en", "spanish": "es", "french": "fr", "german": "de",
	"italian": "it", "portuguese": "pt", "dutch": "nl", "russian": "ru",
	"japanese": "ja", "chinese": "zh", "korean": "ko", "arabic": "ar",
	"hindi": "hi", "polish": "pl", "swedish": "sv", "norwegian": "no",
	"danish": "da", "finnish": "fi", "turkish": "tr", "greek": "el",
	"hebrew": "he", "czech": "cs", "hungarian": "hu", "romanian": "ro",
	"ukrainian": "uk", "vietnamese": "vi", "indonesian": "id", "thai": "th",
	"catalan": "ca", "bulgarian": "bg",
}

// LanguageCode normalizes a language value to a 2-letter ISO 639-1 code where
// possible. Locale suffixes are stripped ("en-US" -> "en"), 3-letter codes and
// English names are mapped, and anything unrecognized is returned lowercased.
func LanguageCode(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}

	// Strip locale region: en-US, en_GB.
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}

	if len(s) == 2 {
		return s
	}
	if code, ok := iso639_2to1[s]; ok {
		return code
	}
	if code, ok := languageNameToCode[s]; ok {
		return code
	}
	return s
}

// FoldKey returns a case-insensitive comparison key: NFKD-decomposed,
// combining marks dropped, lowercased. "Jérôme" and "jerome" fold together.
func FoldKey(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.TrimSpace(s)
}
