package lowdown

import (
	"regexp"
	"strings"
	"unicode"
)

// docPostProcessor is a function type that post-processes the documentation text of a record.
// It can be used to apply additional formatting or extract more details from the docs.
type docPostProcessor func(doc recordDoc) recordDoc

// recordDoc holds the documentation text shared by class and function records.
type recordDoc struct {
	namespace   string
	summary     string
	description string
	deprecated  string
}

func postProcessDoc(doc recordDoc, processors ...docPostProcessor) recordDoc {
	for _, process := range processors {
		doc = process(doc)
	}
	return doc
}

var deprecatedRegex = regexp.MustCompile(`(?m)^Deprecated:\s*(.*)$`)

// extractDeprecatedInformation moves the "Deprecated:" paragraph out of the description.
func extractDeprecatedInformation(doc recordDoc) recordDoc {
	matches := deprecatedRegex.FindStringSubmatch(doc.description)
	if len(matches) > 1 {
		doc.deprecated = strings.TrimSpace(matches[1])
		doc.description = strings.TrimSpace(deprecatedRegex.ReplaceAllString(doc.description, ""))
	}
	if rest, found := strings.CutPrefix(doc.summary, "Deprecated:"); found && doc.deprecated == "" {
		doc.deprecated = strings.TrimSpace(rest)
		doc.summary = ""
	}
	return doc
}

// removeTrailingWhitespace removes trailing whitespace from the docs.
func removeTrailingWhitespace(doc recordDoc) recordDoc {
	doc.summary = strings.TrimSpace(doc.summary)
	doc.description = strings.TrimRightFunc(doc.description, unicode.IsSpace)
	return doc
}

// renderDescription applies the configured [DescriptionRenderer].
func renderDescription(render DescriptionRenderer) docPostProcessor {
	return func(doc recordDoc) recordDoc {
		if render == nil || doc.description == "" {
			return doc
		}
		doc.description = render(doc.namespace, doc.description)
		return doc
	}
}
