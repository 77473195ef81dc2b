// Package i18n serves the bot's user-facing texts from YAML catalogues.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// baseLang backs every other language for keys it does not define.
const baseLang = "en"

// Translator maps message keys to fmt format strings for one language.
type Translator struct {
	lang     string
	messages map[string]string
	fallback *Translator
}

// NewTranslator loads locales/<lang>.yaml from fsys. For languages other
// than English the English catalogue is loaded too and used for gaps.
func NewTranslator(fsys fs.FS, lang string) (*Translator, error) {
	t, err := loadCatalogue(fsys, lang)
	if err != nil {
		return nil, err
	}
	if lang != baseLang {
		if t.fallback, err = loadCatalogue(fsys, baseLang); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func loadCatalogue(fsys fs.FS, lang string) (*Translator, error) {
	name := "locales/" + lang + ".yaml"
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	t.lang = lang
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	messages := map[string]string{}
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if len(messages) == 0 {
		return nil, errors.New("empty catalogue")
	}
	return &Translator{lang: baseLang, messages: messages}, nil
}

func (t *Translator) Lang() string { return t.lang }

func (t *Translator) lookup(key string) (string, bool) {
	if msg, ok := t.messages[key]; ok {
		return msg, true
	}
	if t.fallback != nil {
		return t.fallback.lookup(key)
	}
	return "", false
}

// T formats key with args. An unknown key comes back verbatim so a gap is
// visible in chat.
func (t *Translator) T(key string, args ...interface{}) string {
	msg, ok := t.lookup(key)
	switch {
	case !ok:
		return key
	case len(args) == 0:
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func (t *Translator) Has(key string) bool {
	_, ok := t.lookup(key)
	return ok
}
