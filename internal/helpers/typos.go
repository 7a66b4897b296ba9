package helpers

import (
	"strings"
	"unicode/utf8"
)

// TypoDetector suggests a known label for a misspelled one. Only single
// character deletions, insertions and substitutions are detected, compared
// case-insensitively.
type TypoDetector struct {
	exact        map[string]string
	oneCharTypos map[string]string
}

func MakeTypoDetector(valid []string) TypoDetector {
	detector := TypoDetector{
		exact:        make(map[string]string),
		oneCharTypos: make(map[string]string),
	}

	// Add all combinations of each valid word with one character missing
	for _, correct := range valid {
		lower := strings.ToLower(correct)
		detector.exact[lower] = correct
		if len(lower) > 3 {
			for i, ch := range lower {
				detector.oneCharTypos[lower[:i]+lower[i+utf8.RuneLen(ch):]] = correct
			}
		}
	}

	return detector
}

func (detector TypoDetector) MaybeCorrectTypo(typo string) (string, bool) {
	typo = strings.ToLower(typo)

	// Check for a difference in case only
	if corrected, ok := detector.exact[typo]; ok {
		return corrected, true
	}

	// Check for a single deleted character
	if corrected, ok := detector.oneCharTypos[typo]; ok {
		return corrected, true
	}

	// Check for a single inserted or substituted character
	for i, ch := range typo {
		without := typo[:i] + typo[i+utf8.RuneLen(ch):]
		if corrected, ok := detector.exact[without]; ok && len(without) > 3 {
			return corrected, true
		}
		if corrected, ok := detector.oneCharTypos[without]; ok {
			return corrected, true
		}
	}

	return "", false
}
