// Package i18n looks up display strings by key.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Subs fill the {{.name}} fields of a translated message.
type Subs map[string]string

// Translator resolves keys for one locale, falling back to English.
type Translator struct {
	tag       language.Tag
	localizer *goi18n.Localizer
}

// New picks the best bundled locale for the preferred list, e.g. "zh-Hans"
// or "en_US.UTF-8".
func New(preferred ...string) (*Translator, error) {
	bundle, err := newBundle()
	if err != nil {
		return nil, err
	}
	tag := match(bundle.LanguageTags(), preferred)
	return &Translator{tag: tag, localizer: goi18n.NewLocalizer(bundle, tag.String())}, nil
}

// MustNew is New for the embedded catalogs, which always load.
func MustNew(preferred ...string) *Translator {
	t, err := New(preferred...)
	if err != nil {
		panic(err)
	}
	return t
}

// Locale returns the chosen locale tag.
func (t *Translator) Locale() language.Tag {
	return t.tag
}

// T translates key. Unknown keys are returned unchanged.
func (t *Translator) T(key string, subs ...Subs) string {
	var data map[string]string
	if len(subs) > 0 {
		data = make(map[string]string)
		for _, s := range subs {
			for name, value := range s {
				data[name] = value
			}
		}
	}

	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		return key
	}
	return msg
}

func newBundle() (*goi18n.Bundle, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := fs.Glob(localeFS, "locales/*.json")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(localeFS, f); err != nil {
			return nil, fmt.Errorf("failed to load locale %s: %w", f, err)
		}
	}
	return bundle, nil
}

// match returns the best of supported, whose first entry is the default.
func match(supported []language.Tag, preferred []string) language.Tag {
	var wanted []language.Tag
	for _, p := range preferred {
		// POSIX locales carry an encoding suffix and use underscores
		if i := strings.IndexByte(p, '.'); i >= 0 {
			p = p[:i]
		}
		p = strings.ReplaceAll(p, "_", "-")
		if p == "" || p == "C" || p == "POSIX" {
			continue
		}
		if tag, err := language.Parse(p); err == nil {
			wanted = append(wanted, tag)
		}
	}

	_, index, confidence := language.NewMatcher(supported).Match(wanted...)
	if confidence == language.No {
		return supported[0]
	}
	return supported[index]
}
