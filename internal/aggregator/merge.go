package aggregator

import (
	"sort"

	"github.com/listenupapp/sidecar/internal/domain"
)

// Merge reconciles multiple records into one. Records are stably sorted by
// the index of their kind in the priority list (unknown kinds last,
// relative order preserved); scalars take the first present value, list
// fields extend case-insensitively in priority order, and the chapter list
// is selected wholesale from a single best source.
func Merge(records []*domain.ParsedMetadata, priority []domain.SourceKind) *domain.ParsedMetadata {
	sorted := make([]*domain.ParsedMetadata, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return priorityRank(sorted[i].Kind, priority) < priorityRank(sorted[j].Kind, priority)
	})

	merged := domain.NewParsedMetadata(domain.SourceMerged, "")

	for _, rec := range sorted {
		takeString(&merged.SourcePath, rec.SourcePath)
		takeString(&merged.Title, rec.Title)
		takeString(&merged.SortTitle, rec.SortTitle)
		takeString(&merged.OriginalTitle, rec.OriginalTitle)
		takeString(&merged.Subtitle, rec.Subtitle)
		takeString(&merged.Description, rec.Description)
		takeString(&merged.Publisher, rec.Publisher)
		takeString(&merged.PublishedDate, rec.PublishedDate)
		takeInt(&merged.Year, rec.Year)
		takeString(&merged.Language, rec.Language)
		takeFloat(&merged.CommunityRating, rec.CommunityRating)
		takeFloat(&merged.CriticRating, rec.CriticRating)
		takeBool(&merged.Abridged, rec.Abridged)
		takeString(&merged.SeriesName, rec.SeriesName)
		takeFloat(&merged.SeriesIndex, rec.SeriesIndex)

		for _, v := range rec.Authors {
			merged.AddAuthor(v)
		}
		for _, v := range rec.Narrators {
			merged.AddNarrator(v)
		}
		for _, v := range rec.Genres {
			merged.AddGenre(v)
		}
		for _, v := range rec.Tags {
			merged.AddTag(v)
		}

		takeString(&merged.ISBN, rec.ISBN)
		takeString(&merged.ISBN13, rec.ISBN13)
		takeString(&merged.ASIN, rec.ASIN)
		takeString(&merged.AudibleASIN, rec.AudibleASIN)
		takeString(&merged.GoodreadsID, rec.GoodreadsID)
		takeString(&merged.GoogleBooksID, rec.GoogleBooksID)
		takeString(&merged.OpenLibraryID, rec.OpenLibraryID)
		for k, v := range rec.Identifiers {
			merged.PutIdentifier(k, v)
		}

		takeInt64(&merged.Duration, rec.Duration)
		takeString(&merged.CoverPath, rec.CoverPath)
	}

	merged.Chapters = selectChapters(sorted)
	return merged
}

// priorityRank returns the index of kind in the priority list, or one past
// the end for kinds not listed.
func priorityRank(kind domain.SourceKind, priority []domain.SourceKind) int {
	for i, p := range priority {
		if p == kind {
			return i
		}
	}
	return len(priority)
}

// selectChapters picks one record's chapter list wholesale. Explicit
// chapter sources always beat the multi-file heuristic regardless of
// priority order; within each class the longest list wins, ties going to
// the higher-priority record.
func selectChapters(sorted []*domain.ParsedMetadata) []domain.ChapterMark {
	var best *domain.ParsedMetadata
	bestClass, bestCount := 0, 0

	for _, rec := range sorted {
		if !rec.HasChapters() {
			continue
		}
		class := 0
		if rec.Kind == domain.SourceMultiFile {
			class = 1
		}
		count := len(rec.Chapters)

		if best == nil || class < bestClass || (class == bestClass && count > bestCount) {
			best, bestClass, bestCount = rec, class, count
		}
	}

	if best == nil {
		return nil
	}
	return best.Chapters
}

// First-write-wins setters: a later (lower-priority) record never
// overwrites a field an earlier record already set.

func takeString(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func takeInt(dst *int, v int) {
	if *dst == 0 && v != 0 {
		*dst = v
	}
}

func takeInt64(dst *int64, v int64) {
	if *dst == 0 && v != 0 {
		*dst = v
	}
}

func takeFloat(dst **float64, v *float64) {
	if *dst == nil && v != nil {
		value := *v
		*dst = &value
	}
}

func takeBool(dst **bool, v *bool) {
	if *dst == nil && v != nil {
		value := *v
		*dst = &value
	}
}
