package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"restaurant-backend/shared/apperr"
)

// SourceLanguage is the language menu content is written in.
const SourceLanguage = "ES"

var (
	supportedLanguages = map[string]bool{"ES": true, "EN-GB": true}
	languageAliases    = map[string]string{"EN": "EN-GB"}
	nonLanguageChars   = regexp.MustCompile(`[^A-Z-]`)
)

// NormalizeLanguage turns a ?lang= value into a supported target language.
// An empty value means the source language.
func NormalizeLanguage(raw string) (string, error) {
	lang := strings.ToUpper(strings.TrimSpace(raw))
	if lang == "" {
		return SourceLanguage, nil
	}
	lang = nonLanguageChars.ReplaceAllString(lang, "")
	if alias, ok := languageAliases[lang]; ok {
		lang = alias
	}
	if !supportedLanguages[lang] {
		return "", apperr.New(apperr.UnsupportedLanguage, fmt.Sprintf("Language '%s' not supported.", lang))
	}
	return lang, nil
}

// Translator translates a batch of texts, preserving order.
type Translator interface {
	Translate(ctx context.Context, texts []string, targetLang string) ([]string, error)
}

// TranslationClient talks to a DeepL-compatible translation API.
type TranslationClient struct {
	baseURL    string
	authKey    string
	httpClient *http.Client
}

func NewTranslationClient(baseURL, authKey string) *TranslationClient {
	return &TranslationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		authKey: authKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type translateRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang"`
}

type translateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

func (tc *TranslationClient) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	if tc.authKey == "" {
		return nil, apperr.New(apperr.TranslationFailed, "DeepL API key is not configured.")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	jsonData, err := json.Marshal(translateRequest{Text: texts, TargetLang: targetLang, SourceLang: SourceLanguage})
	if err != nil {
		return nil, apperr.Wrap(apperr.TranslationFailed, "failed to marshal request", err)
	}

	url := fmt.Sprintf("%s/v2/translate", tc.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperr.Wrap(apperr.TranslationFailed, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+tc.authKey)

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.TranslationFailed, "failed to send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.TranslationFailed, fmt.Sprintf("translation service returned status: %d", resp.StatusCode))
	}

	var body translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.Wrap(apperr.TranslationFailed, "failed to decode response", err)
	}
	if len(body.Translations) != len(texts) {
		return nil, apperr.New(apperr.TranslationFailed,
			fmt.Sprintf("expected %d translations, got %d", len(texts), len(body.Translations)))
	}

	out := make([]string, len(texts))
	for i, t := range body.Translations {
		out[i] = t.Text
	}
	return out, nil
}
