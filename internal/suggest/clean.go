package suggest

import (
	"regexp"
	"strings"
)

const fence = "```"

var (
	langTag = regexp.MustCompile(`^[\w+.-]+$`)
	// heredocStart finds a "<<DELIM", "<<-DELIM" or quoted-delimiter
	// redirect. Here-strings ("<<<") are not heredocs.
	heredocStart = regexp.MustCompile(`(?:^|[^<])<<-?[ \t]*['"]?([A-Za-z_][\w]*)['"]?`)
)

// Clean extracts an executable command from a model reply.
//
// A fenced block in the reply wins; otherwise fence markers are trimmed at
// the start and end of the text only. Markers in the middle of a command are
// left alone, and so are fence lines inside a heredoc body. Clean is
// idempotent.
func Clean(raw string) string {
	s := raw
	for {
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

// cleanOnce returns s unchanged or strictly shorter, so Clean terminates.
func cleanOnce(s string) string {
	s = strings.TrimSpace(s)

	if body, ok := firstBlock(s); ok {
		return strings.TrimSpace(body)
	}

	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			if first := strings.TrimSpace(s[:i]); first == "" || langTag.MatchString(first) {
				s = s[i+1:]
			}
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), fence)

	return strings.TrimSpace(s)
}

// firstBlock returns the body of the first fenced block: an opening line of
// ``` with an optional language tag, up to the next bare ``` line. Both
// markers must be on their own lines and outside any heredoc body.
func firstBlock(s string) (string, bool) {
	lines := strings.Split(s, "\n")
	open := -1
	delim := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if delim != "" {
			if trimmed == delim {
				delim = ""
			}
			continue
		}

		if rest, ok := strings.CutPrefix(trimmed, fence); ok {
			rest = strings.TrimSpace(rest)
			switch {
			case open >= 0 && rest == "":
				return strings.Join(lines[open+1:i], "\n"), true
			case open < 0 && (rest == "" || langTag.MatchString(rest)):
				open = i
			}
			continue
		}

		if m := heredocStart.FindStringSubmatch(line); m != nil {
			delim = m[1]
		}
	}
	return "", false
}
