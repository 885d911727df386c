package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models/menu"
)

type upperTranslator struct {
	calls [][]string
	err   error
}

func (u *upperTranslator) Translate(_ context.Context, texts []string, targetLang string) ([]string, error) {
	u.calls = append(u.calls, texts)
	if u.err != nil {
		return nil, u.err
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = targetLang + ":" + strings.ToUpper(t)
	}
	return out, nil
}

func dishFields(d *menu.Dish) []*string { return []*string{&d.DishName, &d.Description} }

func TestTranslate_BatchesNonEmptyFields(t *testing.T) {
	tr := &upperTranslator{}
	svc := NewTranslationService(tr, zerolog.Nop())
	dishes := []menu.Dish{
		{DishName: "tortilla", Description: "de patatas"},
		{DishName: "gazpacho"},
	}

	require.NoError(t, Translate(context.Background(), svc, "EN-GB", dishes, dishFields))
	require.Len(t, tr.calls, 1)
	assert.Equal(t, []string{"tortilla", "de patatas", "gazpacho"}, tr.calls[0])
	assert.Equal(t, "EN-GB:TORTILLA", dishes[0].DishName)
	assert.Equal(t, "EN-GB:DE PATATAS", dishes[0].Description)
	assert.Equal(t, "EN-GB:GAZPACHO", dishes[1].DishName)
	assert.Empty(t, dishes[1].Description)
}

func TestTranslate_SourceLanguageIsNoop(t *testing.T) {
	tr := &upperTranslator{}
	svc := NewTranslationService(tr, zerolog.Nop())
	dishes := []menu.Dish{{DishName: "tortilla"}}

	require.NoError(t, Translate(context.Background(), svc, "ES", dishes, dishFields))
	assert.Empty(t, tr.calls)
	assert.Equal(t, "tortilla", dishes[0].DishName)
}

func TestTranslate_ProviderFailure(t *testing.T) {
	tr := &upperTranslator{err: apperr.New(apperr.TranslationFailed, "DeepL API key is not configured.")}
	svc := NewTranslationService(tr, zerolog.Nop())
	dishes := []menu.Dish{{DishName: "tortilla"}}

	err := Translate(context.Background(), svc, "EN-GB", dishes, dishFields)
	assert.Equal(t, apperr.TranslationFailed, apperr.KindOf(err))
	assert.Equal(t, "tortilla", dishes[0].DishName)
}
