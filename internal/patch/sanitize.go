package patch

import "strings"

// StripFences removes a single surrounding markdown code fence: one leading
// fence line (``` with an optional language tag) and, if present, one matching
// trailing fence line. Inner content is untouched, so already-fenceless text
// round-trips unchanged apart from surrounding whitespace.
func StripFences(text string) string {
	stripped := strings.TrimSpace(text)
	if !strings.HasPrefix(stripped, "```") {
		return stripped
	}
	lines := strings.Split(stripped, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// LooksLikeUnifiedDiff reports whether text already has the shape of a
// unified diff: a "diff --git" first line, or a "--- " line followed (in
// order) by a "+++ " line and an "@@" hunk header. The check is deliberately
// shallow; hunk correctness is the patch applier's responsibility.
func LooksLikeUnifiedDiff(text string) bool {
	if strings.HasPrefix(text, "diff --git ") {
		return true
	}
	from := indexOfLinePrefix(text, "--- ", 0)
	if from < 0 {
		return false
	}
	to := indexOfLinePrefix(text, "+++ ", from)
	if to < 0 {
		return false
	}
	return indexOfLinePrefix(text, "@@", to) >= 0
}

// indexOfLinePrefix returns the offset of the first line at or after from
// that starts with prefix, or -1.
func indexOfLinePrefix(text, prefix string, from int) int {
	for i := from; i <= len(text); {
		if strings.HasPrefix(text[i:], prefix) {
			return i
		}
		next := strings.IndexByte(text[i:], '\n')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return -1
}
