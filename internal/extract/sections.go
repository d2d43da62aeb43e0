package extract

import "strings"

// UntilPattern returns the lines before the first line matching stop.
// When nothing matches, every line is returned.
func UntilPattern(text, stop string) []string {
	re := compileOrLog("UntilPattern", stop)
	lines := strings.Split(text, "\n")
	if re == nil {
		return lines
	}

	var out []string
	for _, line := range lines {
		if re.MatchString(line) {
			break
		}
		out = append(out, line)
	}
	return out
}

// BetweenPatterns returns the lines of the first start...stop span.
// Only one span is extracted even if start matches again after stop.
func BetweenPatterns(text, start, stop string, includeStart, includeStop bool) []string {
	startRe := compileOrLog("BetweenPatterns", start)
	stopRe := compileOrLog("BetweenPatterns", stop)
	if startRe == nil || stopRe == nil {
		return nil
	}

	var out []string
	extracting := false
	for _, line := range strings.Split(text, "\n") {
		if !extracting {
			if startRe.MatchString(line) {
				extracting = true
				if includeStart {
					out = append(out, line)
				}
			}
			continue
		}
		if stopRe.MatchString(line) {
			if includeStop {
				out = append(out, line)
			}
			break
		}
		out = append(out, line)
	}
	return out
}

// JoinLines trims each line, drops blanks and joins the rest with sep.
func JoinLines(lines []string, sep string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, sep)
}
