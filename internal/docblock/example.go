package docblock

import (
	"regexp"
	"strings"
)

var exampleRegex = regexp.MustCompile(`(?s)<pre>\s*(.*?)\s*</pre>`)

// ExtractExample returns the contents of the first <pre> block found in the description.
// Escaped forward slashes ("\/") are unescaped.
// The contents are not validated in any way.
func ExtractExample(description string) (string, bool) {
	matches := exampleRegex.FindStringSubmatch(description)
	if len(matches) < 2 || matches[1] == "" {
		return "", false
	}
	return strings.ReplaceAll(matches[1], `\/`, "/"), true
}
