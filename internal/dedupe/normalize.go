package dedupe

import "strings"

// Token vocabularies stripped during normalization. Longer tokens come first
// so that e.g. "hdts" is removed before "hd" can match inside it.
var (
	qualityTokens = []string{"2160p", "1080p", "720p", "webrip", "hdts", "4k", "hq", "hd"}
	codecTokens   = []string{"x264", "x265", "h264", "h265", "hevc", "avc"}
	containerExts = []string{".mkv", ".mp4", ".avi", ".mov"}
)

const bracketChars = "[](){}"

// Normalize canonicalizes a file name for fuzzy duplicate detection:
// lower-case, strip brackets, strip quality and codec tokens, strip one
// trailing media-container extension, then drop every remaining character
// that is not alphanumeric. Deterministic and idempotent.
func Normalize(name string) string {
	out := normalizePass(name)
	// Token removal can join characters into a fresh token occurrence
	// ("h" + "1080p" + "d" -> "hd"). Re-run until stable so the result is
	// a true fixpoint.
	for prev := name; out != prev; {
		prev = out
		out = normalizePass(out)
	}
	return out
}

func normalizePass(name string) string {
	s := strings.ToLower(name)

	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(bracketChars, r) {
			return -1
		}
		return r
	}, s)

	for _, tok := range qualityTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	for _, tok := range codecTokens {
		s = strings.ReplaceAll(s, tok, "")
	}

	// At most one trailing container extension is dropped.
	for _, ext := range containerExts {
		if strings.HasSuffix(s, ext) {
			s = strings.TrimSuffix(s, ext)
			break
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
