package content

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MaxPlainText bounds the text handed to the moderation model.
const MaxPlainText = 10000

// PlainText strips markup from user-submitted content and returns readable text.
// Input without markup is only whitespace-collapsed.
func PlainText(s string) string {
	if !strings.Contains(s, "<") {
		return truncate(strings.Join(strings.Fields(s), " "))
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return truncate(strings.Join(strings.Fields(s), " "))
	}

	var sb strings.Builder
	var extract func(*html.Node)

	// Tags to skip (non-content)
	skipTags := map[string]bool{
		"script": true, "style": true, "noscript": true,
		"iframe": true, "template": true,
	}

	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(doc)

	return truncate(strings.Join(strings.Fields(sb.String()), " "))
}

func truncate(s string) string {
	return ClipRunes(s, MaxPlainText)
}

// ClipRunes keeps at most max characters of s
func ClipRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL path segment ("My AI Tool!" -> "my-ai-tool")
func Slugify(title string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeTag lowercases a tag and joins words with hyphens
func NormalizeTag(tag string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(tag)), "-")
}

// NormalizeTags normalizes every tag, dropping empties and duplicates
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		normalized = append(normalized, NormalizeTag(t))
	}
	return Dedupe(normalized)
}

// Dedupe drops empty and repeated values, keeping first occurrences in order
func Dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Truncate shortens s to max characters for single-line display
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return ClipRunes(s, max)
	}
	return ClipRunes(s, max-3) + "..."
}
