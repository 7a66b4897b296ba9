// Package selection decides which catalog modules end up in the bundle.
//
// Unknown labels never fail the build. They are dropped with a warning so a
// stale or misspelled label in a config file degrades to "not included".
package selection

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/evanw/esbuild-plugin-monaco/internal/helpers"
	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
)

// ExclusionMarker turns a feature selector into "everything except this".
const ExclusionMarker = "!"

// ResolveFeatures selects catalog features:
//
//   - no selectors: every feature in catalog order
//   - any "!label" selector: every feature except the excluded ones, in
//     catalog order, and plain selectors in the same list are ignored
//   - otherwise: exactly the selectors in the order given
func ResolveFeatures(log logger.Log, cat *catalog.Catalog, selectors []string) []catalog.ModuleDefinition {
	if len(selectors) == 0 {
		return append([]catalog.ModuleDefinition{}, cat.Features...)
	}

	var excluded []string
	var plain []string
	for _, selector := range selectors {
		if label := strings.TrimPrefix(selector, ExclusionMarker); label != selector {
			excluded = append(excluded, label)
		} else {
			plain = append(plain, selector)
		}
	}

	if len(excluded) == 0 {
		return pick(log, cat.Features, plain, logger.MsgID_Selection_UnknownFeature, "feature")
	}

	if len(plain) > 0 {
		log.AddIDWithNotes(logger.MsgID_Selection_IgnoredFeatureSelector, logger.Warning,
			fmt.Sprintf("Ignoring feature selectors %s because exclusions are also present",
				helpers.StringArrayToQuotedCommaSeparatedString(plain)),
			[]string{"Once any feature is excluded with \"!\", every other feature is included automatically."})
	}

	isExcluded := make(map[string]bool, len(excluded))
	for _, label := range excluded {
		if _, ok := cat.Feature(label); !ok {
			warnUnknown(log, cat.FeatureLabels(), label, logger.MsgID_Selection_UnknownFeature, "feature")
		}
		isExcluded[label] = true
	}

	var result []catalog.ModuleDefinition
	for _, def := range cat.Features {
		if !isExcluded[def.Label] {
			result = append(result, def)
		}
	}
	return result
}

// ResolveLanguages selects catalog languages: every language when no labels
// are given, otherwise exactly the labels in the order given. Custom languages
// are appended as-is in both cases.
func ResolveLanguages(
	log logger.Log,
	cat *catalog.Catalog,
	labels []string,
	custom []catalog.ModuleDefinition,
) []catalog.ModuleDefinition {
	var result []catalog.ModuleDefinition
	if len(labels) == 0 {
		result = append(result, cat.Languages...)
	} else {
		result = pick(log, cat.Languages, labels, logger.MsgID_Selection_UnknownLanguage, "language")
	}
	return append(result, custom...)
}

func pick(log logger.Log, defs []catalog.ModuleDefinition, labels []string, id logger.MsgID, kind string) []catalog.ModuleDefinition {
	byLabel := make(map[string]catalog.ModuleDefinition, len(defs))
	for _, def := range defs {
		byLabel[def.Label] = def
	}

	var result []catalog.ModuleDefinition
	var valid []string
	seen := make(map[string]bool, len(labels))

	for _, label := range labels {
		def, ok := byLabel[label]
		if !ok {
			if valid == nil {
				for _, def := range defs {
					valid = append(valid, def.Label)
				}
			}
			warnUnknown(log, valid, label, id, kind)
			continue
		}
		// Repeats are kept. Their imports and workers are merged later on.
		if seen[label] {
			log.AddID(logger.MsgID_Selection_DuplicateLabel, logger.Warning,
				fmt.Sprintf("The %s %q was selected more than once", kind, label))
		}
		seen[label] = true
		result = append(result, def)
	}

	return result
}

func warnUnknown(log logger.Log, valid []string, label string, id logger.MsgID, kind string) {
	text := fmt.Sprintf("Unknown %s %q will not be included", kind, label)
	var notes []string
	if corrected, ok := helpers.MakeTypoDetector(valid).MaybeCorrectTypo(label); ok {
		notes = append(notes, fmt.Sprintf("Did you mean %q instead?", corrected))
	}
	log.AddIDWithNotes(id, logger.Warning, text, notes)
}
