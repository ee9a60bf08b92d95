package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/language"
)

// Category is a gallery filter label.
// The set is closed, see Categories.
type Category string

const (
	CategoryAll             Category = "show-all"
	CategoryBreathing       Category = "breathing"
	CategoryMeditation      Category = "meditation"
	CategorySeniorYoga      Category = "senior-yoga"
	CategoryLightExercise   Category = "light-exercise"
	CategoryRelaxationMusic Category = "relaxation-music"
)

var ErrUnknownCategory = errors.New("unknown category")

// Categories lists the closed set in display order.
var Categories = []Category{
	CategoryAll,
	CategoryBreathing,
	CategoryMeditation,
	CategorySeniorYoga,
	CategoryLightExercise,
	CategoryRelaxationMusic,
}

// Indonesian labels come first: it is the
// language of the gallery and the fallback.
var labelLanguages = []language.Tag{
	language.Indonesian,
	language.English,
}

var labelMatcher = language.NewMatcher(labelLanguages)

var labels = map[language.Tag]map[Category]string{
	language.Indonesian: {
		CategoryAll:             "Semua",
		CategoryBreathing:       "Pernapasan",
		CategoryMeditation:      "Meditasi",
		CategorySeniorYoga:      "Yoga Lansia",
		CategoryLightExercise:   "Senam Ringan",
		CategoryRelaxationMusic: "Musik Relaksasi",
	},
	language.English: {
		CategoryAll:             "Show all",
		CategoryBreathing:       "Breathing",
		CategoryMeditation:      "Meditation",
		CategorySeniorYoga:      "Senior yoga",
		CategoryLightExercise:   "Light exercise",
		CategoryRelaxationMusic: "Relaxation music",
	},
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns localized category name.
// Unsupported languages fall back to Indonesian.
func (c Category) Label(lang language.Tag) string {
	set, ok := labels[lang]
	if !ok {
		set = labels[labelLanguages[0]]
	}
	if l, ok := set[c]; ok {
		return l
	}
	return string(c)
}

// LabelLanguage picks the label language
// best matching an Accept-Language value.
func LabelLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return labelLanguages[0]
	}

	_, idx, conf := labelMatcher.Match(tags...)
	if conf == language.No {
		return labelLanguages[0]
	}

	return labelLanguages[idx]
}

// ParseCategory accepts a category value or any of its
// localized labels (case-insensitive). Empty input means CategoryAll.
//
// On failure the error carries the closest known value, if any.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryAll, nil
	}

	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
		for _, set := range labels {
			if strings.EqualFold(s, set[c]) {
				return c, nil
			}
		}
	}

	if suggestion, ok := closestCategory(s); ok {
		return "", fmt.Errorf("%w %q, did you mean %q?", ErrUnknownCategory, s, suggestion)
	}

	return "", fmt.Errorf("%w %q", ErrUnknownCategory, s)
}

// closestCategory returns category value with minimal
// Levenshtein distance to s among values and labels.
func closestCategory(s string) (Category, bool) {
	s = strings.ToLower(s)

	var (
		best     Category
		bestDist = -1
	)
	for _, c := range Categories {
		candidates := []string{string(c)}
		for _, set := range labels {
			candidates = append(candidates, set[c])
		}

		for _, cand := range candidates {
			d := fuzzy.LevenshteinDistance(s, strings.ToLower(cand))
			if bestDist == -1 || d < bestDist {
				best, bestDist = c, d
			}
		}
	}

	// too far away to be a typo
	if bestDist == -1 || bestDist > max(2, len(s)/3) {
		return "", false
	}

	return best, true
}
