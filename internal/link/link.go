// Package link derives remote object keys, public URLs, and the markdown
// link text spliced into the document.
package link

import (
	"fmt"
	"strings"
	"time"
)

// ObjectKey derives the remote key for a file dropped at the given time:
// "{millis}_{filename}", prefixed with the configured directory (slashes
// trimmed from both ends) when one is set.
//
// The timestamp makes keys collision-resistant, not collision-free: two
// same-named files processed within one millisecond would collide. That is
// an accepted risk, not an invariant.
func ObjectKey(directory, filename string, at time.Time) string {
	key := fmt.Sprintf("%d_%s", at.UnixMilli(), filename)
	if dir := strings.Trim(directory, "/"); dir != "" {
		return dir + "/" + key
	}
	return key
}

// PublicURL joins the configured public base URL with the remote key,
// stripping at most one trailing slash from the base so the join point
// carries exactly one "/". The base is not validated — a malformed base
// surfaces only as a broken link.
func PublicURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}

// Markdown renders the link text for a file: an embedded image when the
// declared content type is an image, a plain link otherwise.
func Markdown(name, url, contentType string) string {
	if IsImage(contentType) {
		return fmt.Sprintf("![%s](%s)", name, url)
	}
	return fmt.Sprintf("[%s](%s)", name, url)
}

// IsImage reports whether contentType declares an image payload.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
