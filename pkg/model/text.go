package model

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Text is a display string that may be computed late, such as a translation
// that depends on the active language. Call Resolve to obtain the value.
type Text interface {
	Resolve() string
}

// String is a Text with a fixed value.
type String string

// Resolve returns s unchanged.
func (s String) Resolve() string {
	return string(s)
}

// Resolve returns the resolved value of t, or "" for a nil Text.
func Resolve(t Text) string {
	if t == nil {
		return ""
	}
	return t.Resolve()
}

// Translator produces lazily translated Text values.
// The language is read when a value is resolved, not when it is created.
type Translator struct {
	mu  sync.RWMutex
	tag language.Tag
	cat catalog.Catalog
}

// NewTranslator creates a translator over cat with tag active.
// A nil catalog falls back to message.DefaultCatalog.
func NewTranslator(cat catalog.Catalog, tag language.Tag) *Translator {
	if cat == nil {
		cat = message.DefaultCatalog
	}
	return &Translator{tag: tag, cat: cat}
}

// Activate switches the language used by subsequent resolutions.
func (t *Translator) Activate(tag language.Tag) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tag = tag
}

// Language returns the active language.
func (t *Translator) Language() language.Tag {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tag
}

// Lazy returns a Text that translates key when resolved.
// Untranslated keys resolve to themselves.
func (t *Translator) Lazy(key string) Text {
	return lazyText{tr: t, key: key}
}

func (t *Translator) translate(key string) string {
	t.mu.RLock()
	p := message.NewPrinter(t.tag, message.Catalog(t.cat))
	t.mu.RUnlock()
	return p.Sprintf(escapePercent(key))
}

type lazyText struct {
	tr  *Translator
	key string
}

func (l lazyText) Resolve() string {
	if l.tr == nil {
		return l.key
	}
	return l.tr.translate(l.key)
}

func (l lazyText) String() string {
	return l.Resolve()
}

// NewCatalog builds a catalog from language -> key -> message tables.
// Keys and messages are literal text; '%' needs no escaping.
func NewCatalog(translations map[string]map[string]string) (catalog.Catalog, error) {
	b := catalog.NewBuilder()
	for lang, messages := range translations {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", lang, err)
		}
		for key, msg := range messages {
			if err := b.SetString(tag, escapePercent(key), escapePercent(msg)); err != nil {
				return nil, fmt.Errorf("failed to add %s translation for %q: %w", lang, key, err)
			}
		}
	}
	return b, nil
}

// escapePercent keeps literal text from being read as format verbs.
func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
