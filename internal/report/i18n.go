package report

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language selects the label set of the PDF summary.
type Language string

const (
	LangEnglish Language = "en"
	LangGerman  Language = "de"
)

var ErrUnsupportedLanguage = errors.New("report: unsupported language")

//go:embed labels.yaml
var labelsYAML []byte

// labels holds every label set keyed by language. English is complete and
// backs missing keys of the others.
var labels = mustParseLabels(labelsYAML)

func mustParseLabels(data []byte) map[Language]map[string]string {
	var out map[Language]map[string]string
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("report: parse labels: %v", err))
	}
	if _, ok := out[LangEnglish]; !ok {
		panic("report: labels lack english set")
	}
	return out
}

// Translator looks up PDF labels for one language.
type Translator struct {
	lang Language
}

// NewTranslator falls back to English for unknown languages.
func NewTranslator(lang Language) Translator {
	if _, ok := labels[lang]; !ok {
		lang = LangEnglish
	}
	return Translator{lang: lang}
}

func (t Translator) Lang() Language {
	return t.lang
}

// T returns the label for key, or key itself when no set defines it.
func (t Translator) T(key string) string {
	for _, lang := range []Language{t.lang, LangEnglish} {
		if val, ok := labels[lang][key]; ok {
			return val
		}
	}
	return key
}

func (t Translator) Format(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

// ParseLanguage accepts the --lang and report.lang spellings.
func ParseLanguage(lang string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en", "english":
		return LangEnglish, nil
	case "de", "german", "deutsch":
		return LangGerman, nil
	default:
		return LangEnglish, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}
