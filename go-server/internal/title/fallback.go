package title

import (
	"net/url"
	"strings"
)

const untitled = "Untitled Link"

// FallbackTitle synthesizes a title from the URL itself: the lower-cased host
// without a leading "www.", followed by " - " and the path segments when there
// are any. Segments keep their percent-encoding, so an escaped slash stays
// inside its segment.
func FallbackTitle(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return untitled
	}

	title := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	var segments []string
	for _, part := range strings.Split(u.EscapedPath(), "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) > 0 {
		title += " - " + strings.Join(segments, " ")
	}
	return title
}
