package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes.
	strictPolicy = bluemonday.StrictPolicy()

	// descriptionPolicy permits basic formatting (<p>, <b>, <i>, <em>, <strong>, <a>, lists, <br>).
	descriptionPolicy = bluemonday.UGCPolicy()
)

// Text strips all markup and surrounding whitespace and returns plain text.
// Entities escaped by the policy are decoded again so names like "O'Brien"
// or "Tom & Jerry" survive a round trip.
// Use for: event titles, venues, participant names.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

// Description sanitizes an event description, keeping safe formatting tags.
// Removes: <script>, <iframe>, event handler attributes, style attributes.
func Description(input string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(input))
}
