package scripture

import (
	"fmt"
	"strings"

	"github.com/autopneuma/pneuma/internal/contracts"
)

// FormatReference renders "John 3:16" or "Romans 12:1-2"
func FormatReference(ref contracts.ScriptureReference) string {
	if ref.VerseEnd != nil && *ref.VerseEnd != ref.VerseStart {
		return fmt.Sprintf("%s %d:%d-%d", ref.Book, ref.Chapter, ref.VerseStart, *ref.VerseEnd)
	}
	return fmt.Sprintf("%s %d:%d", ref.Book, ref.Chapter, ref.VerseStart)
}

// FormatReferenceList renders references as markdown blocks separated by blank lines
func FormatReferenceList(refs []contracts.ScriptureReference) string {
	if len(refs) == 0 {
		return "No scripture references provided."
	}

	blocks := make([]string, len(refs))
	for i, ref := range refs {
		blocks[i] = fmt.Sprintf("**%s** (%s)\n\"%s\"", FormatReference(ref), ref.Version, ref.Text)
	}
	return strings.Join(blocks, "\n\n")
}
