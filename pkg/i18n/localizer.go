// Package i18n translates user facing messages. English and Dutch are
// bundled; unknown messages fall back to English and then to the message ID.
package i18n

import (
	"embed"
	"os"
	"path"
	"strings"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var ErrUnsupportedLanguage = pkgerrors.New("unsupported language")

// supported lists the bundled languages, the default first.
var supported = []language.Tag{language.English, language.Dutch}

var matcher = language.NewMatcher(supported)

type Localizer struct {
	bundle *goi18n.Bundle

	mu        sync.RWMutex
	lang      language.Tag
	localizer *goi18n.Localizer
}

// New loads the bundled message files and selects lang. An unsupported lang
// selects English.
func New(lang string) (*Localizer, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read bundled locales")
	}
	for _, e := range entries {
		p := path.Join("locales", e.Name())
		b, err := localeFS.ReadFile(p)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to read %s", p)
		}
		if _, err := bundle.ParseMessageFileBytes(b, e.Name()); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to parse %s", p)
		}
	}

	l := &Localizer{bundle: bundle}
	if err := l.SetLanguage(lang); err != nil {
		logrus.WithField("language", lang).Debug("unsupported language, using English")
		l.set(language.English)
	}
	return l, nil
}

// Match returns the bundled language closest to lang.
func Match(lang string) (string, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return "", pkgerrors.Wrapf(ErrUnsupportedLanguage, "%q", lang)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", pkgerrors.Wrapf(ErrUnsupportedLanguage, "%q", lang)
	}
	return supported[idx].String(), nil
}

// SystemLanguage returns the bundled language matching the process locale
// from LC_ALL, LC_MESSAGES or LANG, in that order. English is returned when
// the locale is unset or not bundled.
func SystemLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		code, err := Match(localeTag(v))
		if err != nil {
			return language.English.String()
		}
		return code
	}
	return language.English.String()
}

// localeTag turns a POSIX locale such as nl_BE.UTF-8@euro into a BCP 47 tag.
func localeTag(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "C" || locale == "POSIX" {
		return language.English.String()
	}
	return strings.ReplaceAll(locale, "_", "-")
}

func (l *Localizer) SetLanguage(lang string) error {
	code, err := Match(lang)
	if err != nil {
		return err
	}
	l.set(language.Make(code))
	return nil
}

func (l *Localizer) set(tag language.Tag) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lang = tag
	l.localizer = goi18n.NewLocalizer(l.bundle, tag.String(), language.English.String())
}

// Language returns the selected language code.
func (l *Localizer) Language() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang.String()
}

// Supported returns the codes of the bundled languages.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for _, t := range supported {
		out = append(out, t.String())
	}
	return out
}

// T translates the message id. data fills the message template.
func (l *Localizer) T(id string, data map[string]any) string {
	if l == nil {
		return id
	}
	l.mu.RLock()
	loc := l.localizer
	l.mu.RUnlock()
	if loc == nil {
		return id
	}

	s, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return s
}
