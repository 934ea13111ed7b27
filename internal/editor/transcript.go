package editor

import "strings"

// NormalizeSentences splits text on periods, trims each segment, drops the
// empty ones, and rejoins with ". ". Applied when the content field loses
// focus, never during active typing.
func NormalizeSentences(text string) string {
	return strings.Join(splitSentences(text), ". ")
}

// Transcript recomputes the running transcript from all captured recognition
// segments. Sentences repeated verbatim are kept only at their first
// occurrence, in order. The result replaces the draft content wholesale on
// every increment.
func Transcript(segments []string) string {
	sentences := splitSentences(strings.Join(segments, " "))

	// Linear scan of prior output; fine at note-length scale.
	var kept []string
	for _, s := range sentences {
		dup := false
		for _, k := range kept {
			if k == s {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ". ")
}

func splitSentences(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ".") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
