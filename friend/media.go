package friend

import "strings"

// Media is a media a friend might appear in.
//
// Parsing of a media is forgiving and falls back to MediaNone.
type Media int

const (
	// MediaNone means no media was specified, or it could not be parsed.
	MediaNone Media = iota
	// MediaAnime is the 2017 anime (and any future series in that continuity).
	MediaAnime
	// MediaManga covers all manga adaptations.
	MediaManga
	// MediaNexon is the Nexon game.
	MediaNexon
	// MediaStage covers all stage adaptations.
	MediaStage
	// MediaPavilion is the Pavilion game.
	MediaPavilion
)

// ParseMedia parses a media from its raw form, case-insensitively and with
// surrounding whitespace ignored. Unrecognized values map to MediaNone.
func ParseMedia(source string) Media {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "anime":
		return MediaAnime
	case "manga":
		return MediaManga
	case "nexon", "nexon game":
		return MediaNexon
	case "stage", "stage play":
		return MediaStage
	case "pavilion":
		return MediaPavilion
	default:
		return MediaNone
	}
}

// WikiSuffix formats the media into its wiki title suffix (includes the
// slash). MediaNone contributes nothing.
func (m Media) WikiSuffix() string {
	switch m {
	case MediaAnime:
		return "/Anime"
	case MediaManga:
		return "/Manga"
	case MediaNexon:
		return "/Nexon Game"
	case MediaStage:
		return "/Stage Play"
	case MediaPavilion:
		return "/Pavilion"
	default:
		return ""
	}
}

// String returns the media name for logging.
func (m Media) String() string {
	switch m {
	case MediaAnime:
		return "anime"
	case MediaManga:
		return "manga"
	case MediaNexon:
		return "nexon"
	case MediaStage:
		return "stage"
	case MediaPavilion:
		return "pavilion"
	default:
		return "none"
	}
}
