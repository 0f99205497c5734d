package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type tagged struct {
	AuthorID string `json:"author_id" validate:"objectid"`
	Born     string `json:"born" validate:"date"`
}

func TestRegisterTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerTags(v, customTags))

	assert.NoError(t, v.Struct(tagged{AuthorID: primitive.NewObjectID().Hex(), Born: "1947-06-22"}))

	err := v.Struct(tagged{AuthorID: "xyz", Born: "22/06/1947"})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "author_id", verrs[0].Field())
	assert.Equal(t, "objectid", verrs[0].Tag())
	assert.Equal(t, "born", verrs[1].Field())
	assert.Equal(t, "date", verrs[1].Tag())
}

func TestRegisterTags_ReportsFailure(t *testing.T) {
	err := registerTags(validator.New(), map[string]validator.Func{
		"": func(validator.FieldLevel) bool { return true },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `register "" validator`)
}

func TestRegisterValidators_Idempotent(t *testing.T) {
	assert.NotPanics(t, RegisterValidators)
	assert.NotPanics(t, RegisterValidators)
}
