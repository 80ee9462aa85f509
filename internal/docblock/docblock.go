// Package docblock parses structured documentation comments.
//
// A comment consists of a one-paragraph summary, a free-form description and
// a list of tags written as:
//
//	@tagName [type] [$targetName] description
//
// Only typed tags (see [IsTypedTag]) read a type expression.
package docblock

import (
	"strings"
	"unicode"
)

// Tag is a single tag record of a [Comment].
type Tag struct {
	Name        string
	Target      string
	Type        string
	Description string
}

// Comment is a parsed documentation comment.
type Comment struct {
	Summary     string
	Description string
	tags        map[string][]Tag
}

// Tags returns all tags with the given name, in declaration order.
func (c *Comment) Tags(name string) []Tag {
	if c == nil {
		return nil
	}
	return c.tags[name]
}

// Tag returns the first tag with the given name.
func (c *Comment) Tag(name string) (Tag, bool) {
	tags := c.Tags(name)
	if len(tags) == 0 {
		return Tag{}, false
	}
	return tags[0], true
}

// Param returns the first "@param" tag targeting the parameter with the given name.
// Names are matched exactly, position plays no role.
func (c *Comment) Param(name string) (Tag, bool) {
	for _, tag := range c.Tags("param") {
		if tag.Target == name {
			return tag, true
		}
	}
	return Tag{}, false
}

var typedTags = map[string]bool{
	"param":    true,
	"property": true,
	"return":   true,
	"throws":   true,
	"var":      true,
}

// IsTypedTag reports whether the tag carries a type expression.
func IsTypedTag(name string) bool {
	return typedTags[name]
}

// Parse parses the raw comment text.
// Both stripped text and block comments ("/** ... */") are accepted.
// It returns nil if there is no comment.
func Parse(raw string) *Comment {
	lines := normalizeLines(raw)
	if len(lines) == 0 {
		return nil
	}

	comment := &Comment{tags: make(map[string][]Tag)}
	var (
		summary     []string
		description []string
		lastTag     *Tag
		inSummary   = true
		inPre       bool
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inPre && strings.HasPrefix(trimmed, "@") {
			inSummary = false
			if lastTag != nil {
				comment.addTag(*lastTag)
			}
			tag := parseTag(trimmed)
			lastTag = &tag
			continue
		}
		inPre = updatePreState(inPre, trimmed)
		switch {
		case lastTag != nil:
			if trimmed != "" {
				lastTag.Description = strings.TrimSpace(lastTag.Description + " " + trimmed)
			}
		case inSummary:
			if trimmed == "" {
				if len(summary) > 0 {
					inSummary = false
				}
				continue
			}
			summary = append(summary, trimmed)
			if strings.HasSuffix(trimmed, ".") {
				inSummary = false
			}
		default:
			description = append(description, line)
		}
	}
	if lastTag != nil {
		comment.addTag(*lastTag)
	}
	comment.Summary = strings.Join(summary, " ")
	comment.Description = strings.TrimSpace(strings.Join(description, "\n"))
	return comment
}

func (c *Comment) addTag(tag Tag) {
	c.tags[tag.Name] = append(c.tags[tag.Name], tag)
}

func parseTag(line string) Tag {
	name, rest := nextToken(strings.TrimPrefix(line, "@"))
	tag := Tag{Name: name}
	if IsTypedTag(tag.Name) {
		if token, remainder := nextToken(rest); token != "" && !strings.HasPrefix(token, "$") {
			tag.Type = token
			rest = remainder
		}
	}
	if token, remainder := nextToken(rest); strings.HasPrefix(token, "$") {
		tag.Target = strings.TrimPrefix(token, "$")
		rest = remainder
	}
	tag.Description = rest
	return tag
}

// nextToken splits off the first whitespace separated token.
func nextToken(s string) (token, remainder string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// updatePreState tracks whether the following lines are inside a literal block.
func updatePreState(inPre bool, line string) bool {
	opened := strings.LastIndex(line, "<pre>")
	closed := strings.LastIndex(line, "</pre>")
	switch {
	case opened == -1 && closed == -1:
		return inPre
	default:
		return opened > closed
	}
}

// normalizeLines strips block comment markers and gutters,
// dropping leading and trailing empty lines.
func normalizeLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	trimmed := strings.TrimSpace(raw)
	isBlock := strings.HasPrefix(trimmed, "/*")
	if isBlock {
		trimmed = strings.TrimPrefix(trimmed, "/**")
		trimmed = strings.TrimPrefix(trimmed, "/*")
		trimmed = strings.TrimSuffix(trimmed, "*/")
	}
	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		if isBlock {
			line = strings.TrimLeft(line, " \t")
			line = strings.TrimPrefix(line, "*")
			line = strings.TrimPrefix(line, " ")
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
