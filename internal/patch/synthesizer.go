// Package patch turns raw, possibly malformed model output into a valid,
// minimally-scoped unified diff addressed to a logical display path.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

// DefaultMarker is the structural start-of-file marker assumed when none is
// configured.
const DefaultMarker = "<?php"

// Input carries everything one synthesis needs. DisplayPath is the logical,
// repo-relative path placed in diff headers; TargetPath is the file actually
// read on disk.
type Input struct {
	DisplayPath  string
	TargetPath   string
	OriginalText string
	ModelText    string
}

// Synthesizer converts model output plus the original file content into a
// unified diff, delegating the line diff itself to a DiffEngine.
type Synthesizer struct {
	Diff   ports.DiffEngine
	Marker string
}

// NewSynthesizer builds a synthesizer with the given structural marker
// (DefaultMarker when empty).
func NewSynthesizer(diff ports.DiffEngine, marker string) *Synthesizer {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Synthesizer{Diff: diff, Marker: marker}
}

// Synthesize runs the synthesis pipeline. Model output that is already a
// correctly-shaped diff is returned as-is without touching the diff engine;
// otherwise the output is treated as full replacement file content and diffed
// against the original.
func (s *Synthesizer) Synthesize(in Input) (string, error) {
	marker := s.Marker
	if marker == "" {
		marker = DefaultMarker
	}

	text := StripFences(in.ModelText)
	if LooksLikeUnifiedDiff(text) {
		return text, nil
	}

	candidate := extractFileContent(text, marker)
	if startsWithMarker(in.OriginalText, marker) && !startsWithMarker(candidate, marker) {
		return "", &domain.SynthesisError{
			Stage: domain.StageIntegrity,
			Msg:   fmt.Sprintf("model output does not start with %q; refusing to diff truncated file content", marker),
		}
	}
	if strings.TrimSpace(candidate) == "" {
		return "", &domain.SynthesisError{Stage: domain.StageExtract, Msg: "model returned empty file content"}
	}

	tmp, err := os.CreateTemp("", "rai-candidate-*"+filepath.Ext(in.TargetPath))
	if err != nil {
		return "", &domain.SynthesisError{Stage: domain.StageDiff, Msg: "create temp file", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(candidate); err != nil {
		tmp.Close()
		return "", &domain.SynthesisError{Stage: domain.StageDiff, Msg: "write temp file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &domain.SynthesisError{Stage: domain.StageDiff, Msg: "close temp file", Err: err}
	}

	raw, err := s.Diff.Diff(in.TargetPath, tmpPath)
	if err != nil {
		return "", &domain.SynthesisError{Stage: domain.StageDiff, Msg: "diff computation failed", Err: err}
	}

	rewritten := RewriteHeaders(raw, in.DisplayPath)
	if !LooksLikeUnifiedDiff(rewritten) {
		return "", &domain.SynthesisError{
			Stage: domain.StageValidate,
			Msg:   "diff output contains no hunks; candidate may be identical to the original",
		}
	}
	return rewritten, nil
}

// extractFileContent drops stray commentary before the first structural
// marker. Text already starting at the marker, or containing no marker at
// all, passes through unchanged.
func extractFileContent(text, marker string) string {
	if strings.HasPrefix(text, marker) {
		return text
	}
	if idx := strings.Index(text, marker); idx >= 0 {
		return text[idx:]
	}
	return text
}

func startsWithMarker(text, marker string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), marker)
}

// RewriteHeaders points the diff --git, ---, and +++ header lines at the
// logical display path, discarding the absolute target and temp paths the
// diff tool printed. Rewriting stops at the first @@ hunk header: a removed
// content line such as a "-- " SQL comment renders as "--- ..." inside a hunk
// and must pass through unchanged.
func RewriteHeaders(diffText, displayPath string) string {
	lines := strings.Split(diffText, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "@@") {
			break
		}
		switch {
		case strings.HasPrefix(line, "diff --git "):
			lines[i] = fmt.Sprintf("diff --git a/%s b/%s", displayPath, displayPath)
		case strings.HasPrefix(line, "--- "):
			lines[i] = "--- a/" + displayPath
		case strings.HasPrefix(line, "+++ "):
			lines[i] = "+++ b/" + displayPath
		}
	}
	return strings.Join(lines, "\n")
}
