package domain

// AudiobookFile is one audio file inside a chapter-per-file audiobook.
// It lives for a single detection pass and is never persisted.
type AudiobookFile struct {
	Path string
	Name string

	// Track is the number parsed from the filename; valid only when
	// HasTrack is true. Disc-numbered files fold the disc into the track
	// as disc*1000+track so a single integer sorts correctly.
	Track    int
	HasTrack bool

	// Title is the fragment parsed from the filename, "" when the name
	// carried no recognizable title.
	Title string

	// SortOrder is the zero-based position assigned after ordering.
	SortOrder int

	// Start and Duration are in canonical ticks.
	Start    int64
	Duration int64
}
