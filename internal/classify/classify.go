// Package classify extracts structured fields and actionable suggestions
// from free-form provider replies. Both functions are pure and total: any
// input, including empty text, yields a well-defined result.
package classify

import "strings"

// StructuredLabels is the fixed table of semantic labels scanned for by
// ExtractStructured: problem, cause, suggestion, action, analysis,
// optimization. Kept as data so the set can grow without touching the scan.
var StructuredLabels = []string{"问题", "原因", "建议", "措施", "分析", "优化"}

// suggestionMarkers are the line prefixes that mark a suggestion line:
// "suggestion", "recommendation", or a generic bullet.
var suggestionMarkers = []string{"建议", "推荐", "-"}

// MaxSuggestions caps the number of extracted suggestion lines.
const MaxSuggestions = 5

// ExtractStructured maps each label to the substring spanning from the
// label's first occurrence to the next line break (exclusive) or end of
// text. Labels absent from the text are absent from the result.
func ExtractStructured(text string) map[string]string {
	structured := make(map[string]string)
	for _, label := range StructuredLabels {
		idx := strings.Index(text, label)
		if idx < 0 {
			continue
		}
		end := strings.Index(text[idx:], "\n")
		if end < 0 {
			structured[label] = text[idx:]
		} else {
			structured[label] = text[idx : idx+end]
		}
	}
	return structured
}

// ExtractSuggestions returns the trimmed lines starting with a suggestion
// marker, in original order, capped at MaxSuggestions.
func ExtractSuggestions(text string) []string {
	var suggestions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, marker := range suggestionMarkers {
			if strings.HasPrefix(line, marker) {
				suggestions = append(suggestions, line)
				break
			}
		}
		if len(suggestions) == MaxSuggestions {
			break
		}
	}
	return suggestions
}
