package services

import (
	"context"

	"github.com/rs/zerolog"

	"restaurant-backend/shared/clients"
	"restaurant-backend/shared/logger"
)

// Fields returns pointers to the text fields of item that should be translated.
type Fields[T any] func(item *T) []*string

// TranslationService rewrites text fields of menu records into the requested language.
type TranslationService struct {
	translator clients.Translator
	log        zerolog.Logger
}

func NewTranslationService(translator clients.Translator, log zerolog.Logger) *TranslationService {
	return &TranslationService{translator: translator, log: logger.Component(log, "translation")}
}

// Translate translates the fields selected by fields on every item, in place, with one
// provider call. Empty fields are left alone, and nothing happens for the source language.
func Translate[T any](ctx context.Context, s *TranslationService, lang string, items []T, fields Fields[T]) error {
	if lang == clients.SourceLanguage || len(items) == 0 {
		return nil
	}

	var targets []*string
	var texts []string
	for i := range items {
		for _, field := range fields(&items[i]) {
			if *field == "" {
				continue
			}
			targets = append(targets, field)
			texts = append(texts, *field)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	translated, err := s.translator.Translate(ctx, texts, lang)
	if err != nil {
		s.log.Error().Err(err).Str("lang", lang).Int("texts", len(texts)).Msg("translation failed")
		return err
	}
	for i, target := range targets {
		*target = translated[i]
	}
	return nil
}
