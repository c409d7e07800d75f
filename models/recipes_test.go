package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTrimsAndDropsBlankOptionals(t *testing.T) {
	p := RecipePayload{
		Title:        "  Bolo de Chocolate ",
		Time:         String(" 45 min "),
		Difficulty:   String("   "),
		Ingredients:  String(""),
		Instructions: nil,
	}.Normalize()

	assert.Equal(t, "Bolo de Chocolate", p.Title)
	require.NotNil(t, p.Time)
	assert.Equal(t, "45 min", *p.Time)
	assert.Nil(t, p.Difficulty)
	assert.Nil(t, p.Ingredients)
	assert.Nil(t, p.Instructions)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, RecipePayload{Title: "  "}.Validate(), ErrTitleRequired)
	assert.ErrorIs(t, RecipePayload{}.Validate(), ErrTitleRequired)
	assert.NoError(t, RecipePayload{Title: "Salada"}.Validate())
}

func TestRecipeJSONOmitsAbsentFields(t *testing.T) {
	r := RecipePayload{Title: "Bolo", Time: String("45 min")}.WithID("1700000000000")

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1700000000000","title":"Bolo","time":"45 min"}`, string(data))
	assert.NotContains(t, string(data), "null")
}

func TestRecipeJSONKeepsEmptyString(t *testing.T) {
	r := Recipe{ID: "1", Title: "Bolo", Difficulty: String("")}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","title":"Bolo","difficulty":""}`, string(data))
}

func TestValue(t *testing.T) {
	assert.Equal(t, "", Value(nil))
	assert.Equal(t, "x", Value(String("x")))
}
