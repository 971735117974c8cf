package sidecar

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/normalize"
)

// JSONParser parses JSON sidecar metadata. Three dialects are recognized
// structurally, not by filename:
//
//   - a top-level array is a chapters-only list
//   - an object with a libraryItem or mediaMetadata key is the nested
//     dialect written by Audiobookshelf-style servers
//   - any other object is the generic dialect, which accepts several
//     alternative key names per field
type JSONParser struct{}

// NewJSONParser creates a JSON metadata parser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Descriptor returns the parser's identity and file claims.
func (p *JSONParser) Descriptor() Descriptor {
	return Descriptor{
		Name:       "json",
		Kind:       domain.SourceJSON,
		Priority:   50,
		Extensions: []string{".json"},
	}
}

// CanParse reports whether the file has a .json extension.
func (p *JSONParser) CanParse(path string) bool {
	return p.Descriptor().matches(path)
}

// Parse reads a JSON file from disk.
func (p *JSONParser) Parse(path string) (*domain.ParsedMetadata, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseContent(content, path), nil
}

// ParseContent dispatches on the top-level JSON structure. Unparseable JSON
// yields nil.
func (p *JSONParser) ParseContent(content, sourcePath string) *domain.ParsedMetadata {
	var raw any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case []any:
		return discard(parseChapterArray(v, sourcePath))
	case map[string]any:
		if hasKey(v, "libraryItem") || hasKey(v, "mediaMetadata") {
			return discard(parseNestedJSON(v, sourcePath))
		}
		return discard(parseGenericJSON(v, sourcePath))
	default:
		return nil
	}
}

// parseChapterArray handles the chapters-only dialect: a bare array of
// chapter objects.
func parseChapterArray(items []any, sourcePath string) *domain.ParsedMetadata {
	rec := domain.NewParsedMetadata(domain.SourceJSON, sourcePath)
	rec.Chapters = jsonChapters(items)
	return rec
}

// parseNestedJSON handles the Audiobookshelf-style nested dialect.
func parseNestedJSON(obj map[string]any, sourcePath string) *domain.ParsedMetadata {
	rec := domain.NewParsedMetadata(domain.SourceJSON, sourcePath)

	meta, _ := digMap(obj, "libraryItem", "media", "metadata")
	if meta == nil {
		meta, _ = digMap(obj, "mediaMetadata")
	}
	if meta != nil {
		rec.Title = jsonString(meta["title"])
		rec.Subtitle = jsonString(meta["subtitle"])
		for _, name := range jsonNames(meta["authors"]) {
			rec.AddAuthor(name)
		}
		for _, name := range jsonNames(meta["narrators"]) {
			rec.AddNarrator(name)
		}
		for _, g := range jsonNames(meta["genres"]) {
			rec.AddGenre(g)
		}
		for _, tag := range jsonNames(meta["tags"]) {
			rec.AddTag(tag)
		}
		rec.Description = cleanDescription(jsonString(meta["description"]))
		rec.Publisher = jsonString(meta["publisher"])
		rec.PublishedDate = jsonString(meta["publishedDate"])
		if y, ok := jsonInt(meta["publishedYear"]); ok {
			rec.Year = y
		} else if y, ok := jsonInt(meta["year"]); ok {
			rec.Year = y
		}
		if lang := jsonString(meta["language"]); lang != "" {
			rec.Language = normalize.LanguageCode(lang)
		}
		rec.SetISBN(jsonString(meta["isbn"]))
		rec.ASIN = jsonString(meta["asin"])
		if b, ok := meta["abridged"].(bool); ok {
			rec.Abridged = &b
		}

		// Series is an array of {name, sequence}; the first entry wins.
		if series, ok := meta["series"].([]any); ok && len(series) > 0 {
			if s, ok := series[0].(map[string]any); ok {
				rec.SeriesName = jsonString(s["name"])
				if f, ok := jsonFloat(s["sequence"]); ok {
					rec.SeriesIndex = &f
				}
			}
		}
	}

	chapters, _ := digSlice(obj, "libraryItem", "media", "chapters")
	if chapters == nil {
		chapters, _ = digSlice(obj, "chapters")
	}
	rec.Chapters = jsonChapters(chapters)

	return rec
}

// genericKeySets lists the alternative key names the generic dialect accepts
// per field, tried in order.
var genericKeySets = struct {
	title, subtitle, sortTitle, description, publisher, date, language []string
	authors, narrators, genres, tags                                   []string
}{
	title:       []string{"title", "name", "bookTitle"},
	subtitle:    []string{"subtitle"},
	sortTitle:   []string{"sortTitle", "titleSort"},
	description: []string{"description", "summary", "about"},
	publisher:   []string{"publisher"},
	date:        []string{"publishedDate", "pubDate", "releaseDate", "published"},
	language:    []string{"language", "lang"},
	authors:     []string{"author", "authors", "writer", "writers"},
	narrators:   []string{"narrator", "narrators", "reader", "readers"},
	genres:      []string{"genre", "genres"},
	tags:        []string{"tag", "tags"},
}

// parseGenericJSON handles flat metadata objects with loosely standardized
// key names.
func parseGenericJSON(obj map[string]any, sourcePath string) *domain.ParsedMetadata {
	rec := domain.NewParsedMetadata(domain.SourceJSON, sourcePath)

	rec.Title = firstString(obj, genericKeySets.title)
	rec.Subtitle = firstString(obj, genericKeySets.subtitle)
	rec.SortTitle = firstString(obj, genericKeySets.sortTitle)
	rec.Description = cleanDescription(firstString(obj, genericKeySets.description))
	rec.Publisher = firstString(obj, genericKeySets.publisher)
	rec.PublishedDate = firstString(obj, genericKeySets.date)
	if lang := firstString(obj, genericKeySets.language); lang != "" {
		rec.Language = normalize.LanguageCode(lang)
	}
	if y, ok := jsonInt(obj["year"]); ok {
		rec.Year = y
	}

	for _, name := range firstNames(obj, genericKeySets.authors) {
		rec.AddAuthor(name)
	}
	for _, name := range firstNames(obj, genericKeySets.narrators) {
		rec.AddNarrator(name)
	}
	for _, g := range firstNames(obj, genericKeySets.genres) {
		rec.AddGenre(g)
	}
	for _, tag := range firstNames(obj, genericKeySets.tags) {
		rec.AddTag(tag)
	}

	rec.SetISBN(jsonString(obj["isbn"]))
	rec.ASIN = jsonString(obj["asin"])
	if b, ok := obj["abridged"].(bool); ok {
		rec.Abridged = &b
	}
	if f, ok := jsonFloat(obj["duration"]); ok && f > 0 {
		rec.Duration = domain.TicksFromSeconds(f)
	}

	// Series: either {name, position|index|number} or a plain string.
	switch s := obj["series"].(type) {
	case map[string]any:
		rec.SeriesName = jsonString(s["name"])
		for _, key := range []string{"position", "index", "number"} {
			if f, ok := jsonFloat(s[key]); ok {
				rec.SeriesIndex = &f
				break
			}
		}
	case string:
		rec.SeriesName = strings.TrimSpace(s)
	}

	if chapters, ok := obj["chapters"].([]any); ok {
		rec.Chapters = jsonChapters(chapters)
	}

	return rec
}

// jsonChapters converts an array of chapter objects, dropping entries with
// no recognizable start time.
func jsonChapters(items []any) []domain.ChapterMark {
	var marks []domain.ChapterMark
	for i, item := range items {
		ch, ok := item.(map[string]any)
		if !ok {
			continue
		}

		start, ok := jsonChapterStart(ch)
		if !ok {
			continue
		}

		name := jsonString(ch["title"])
		if name == "" {
			name = jsonString(ch["name"])
		}
		if name == "" {
			name = fmt.Sprintf("Chapter %d", i+1)
		}

		marks = append(marks, domain.ChapterMark{Name: name, Start: start})
	}
	return marks
}

// jsonChapterStart extracts a chapter start time in canonical ticks.
// Seconds, milliseconds, and raw ticks keys are tried in that order.
func jsonChapterStart(ch map[string]any) (int64, bool) {
	for _, key := range []string{"start", "startTime", "startOffset"} {
		if f, ok := jsonFloat(ch[key]); ok {
			return domain.TicksFromSeconds(f), true
		}
	}
	for _, key := range []string{"startMs", "startTimeMs"} {
		if f, ok := jsonFloat(ch[key]); ok {
			return domain.TicksFromSeconds(f / 1000), true
		}
	}
	if f, ok := jsonFloat(ch["startPositionTicks"]); ok {
		return int64(f), true
	}
	return 0, false
}

// --- lenient value accessors ---

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

// digMap walks nested objects by key.
func digMap(m map[string]any, keys ...string) (map[string]any, bool) {
	current := m
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// digSlice walks nested objects and returns the final key as an array.
func digSlice(m map[string]any, keys ...string) ([]any, bool) {
	if len(keys) > 1 {
		parent, ok := digMap(m, keys[:len(keys)-1]...)
		if !ok {
			return nil, false
		}
		m = parent
	}
	s, ok := m[keys[len(keys)-1]].([]any)
	return s, ok
}

// jsonString returns a trimmed string value, or "" for anything else.
func jsonString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// jsonFloat accepts numbers and numeric strings.
func jsonFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// jsonInt accepts numbers and numeric strings, truncating fractions.
func jsonInt(v any) (int, bool) {
	f, ok := jsonFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// jsonNames accepts a scalar string, an array of strings, or an array of
// objects with a name field.
func jsonNames(v any) []string {
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	case []any:
		var names []string
		for _, item := range val {
			switch entry := item.(type) {
			case string:
				if s := strings.TrimSpace(entry); s != "" {
					names = append(names, s)
				}
			case map[string]any:
				if s := jsonString(entry["name"]); s != "" {
					names = append(names, s)
				}
			}
		}
		return names
	}
	return nil
}

// firstString returns the first non-empty string among the candidate keys.
func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if s := jsonString(obj[key]); s != "" {
			return s
		}
	}
	return ""
}

// firstNames returns the first non-empty name list among the candidate keys.
func firstNames(obj map[string]any, keys []string) []string {
	for _, key := range keys {
		if names := jsonNames(obj[key]); len(names) > 0 {
			return names
		}
	}
	return nil
}
