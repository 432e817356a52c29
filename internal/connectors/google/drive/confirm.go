package drive

import "regexp"

// DefaultConfirmToken is used when the interstitial page carries no explicit
// confirmation value.
const DefaultConfirmToken = "t"

// The interstitial page embeds the confirmation value either as a hidden
// form input or as a confirm= query parameter inside the continuation link.
// The fragment shape is narrow and documented, so a token scan suffices; no
// HTML engine is needed.
var (
	confirmInputPattern = regexp.MustCompile(
		`name=["']?confirm["']?[^>]*\bvalue=["']?([^"'\s>]+)`)
	confirmInputReversed = regexp.MustCompile(
		`value=["']?([^"'\s>]+)["']?[^>]*\bname=["']?confirm`)
	confirmQueryPattern = regexp.MustCompile(`[?&](?:amp;)?confirm=([0-9A-Za-z_-]+)`)
)

// ParseConfirmToken extracts the confirmation token from an interstitial
// page body. Returns DefaultConfirmToken when no token is found.
func ParseConfirmToken(body []byte) string {
	for _, re := range []*regexp.Regexp{confirmInputPattern, confirmInputReversed, confirmQueryPattern} {
		if m := re.FindSubmatch(body); m != nil {
			return string(m[1])
		}
	}
	return DefaultConfirmToken
}
