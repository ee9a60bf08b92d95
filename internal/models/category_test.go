package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/nurvideo/gallery/internal/models"
)

func TestParseCategory(t *testing.T) {
	testCases := []struct {
		desc   string
		input  string
		expect models.Category
	}{
		{desc: "empty means all", input: "", expect: models.CategoryAll},
		{desc: "blank means all", input: "   ", expect: models.CategoryAll},
		{desc: "value", input: "senior-yoga", expect: models.CategorySeniorYoga},
		{desc: "value upper case", input: "MEDITATION", expect: models.CategoryMeditation},
		{desc: "indonesian label", input: "Musik Relaksasi", expect: models.CategoryRelaxationMusic},
		{desc: "indonesian all", input: "Semua", expect: models.CategoryAll},
		{desc: "english label", input: "light exercise", expect: models.CategoryLightExercise},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			c, err := models.ParseCategory(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, c)
		})
	}
}

func TestParseCategoryUnknown(t *testing.T) {
	_, err := models.ParseCategory("meditaton")
	require.ErrorIs(t, err, models.ErrUnknownCategory)
	assert.Contains(t, err.Error(), `did you mean "meditation"`)

	_, err = models.ParseCategory("cooking-with-grandma")
	require.ErrorIs(t, err, models.ErrUnknownCategory)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestCategoryValid(t *testing.T) {
	for _, c := range models.Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, models.Category("").Valid())
	assert.False(t, models.Category("Semua").Valid())
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Yoga Lansia", models.CategorySeniorYoga.Label(language.Indonesian))
	assert.Equal(t, "Senior yoga", models.CategorySeniorYoga.Label(language.English))
	assert.Equal(t, "Yoga Lansia", models.CategorySeniorYoga.Label(language.Japanese))
}

func TestLabelLanguage(t *testing.T) {
	assert.Equal(t, language.English, models.LabelLanguage("en-US,en;q=0.9"))
	assert.Equal(t, language.Indonesian, models.LabelLanguage("id"))
	assert.Equal(t, language.Indonesian, models.LabelLanguage(""))
	assert.Equal(t, language.Indonesian, models.LabelLanguage("ja-JP"))
}

func TestVideoFilterAll(t *testing.T) {
	assert.True(t, models.VideoFilter{}.All())
	assert.True(t, models.VideoFilter{Category: models.CategoryAll}.All())
	assert.False(t, models.VideoFilter{Category: models.CategoryBreathing}.All())
}
