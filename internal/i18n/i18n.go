// Package i18n loads the chat-card message catalogs and hands out
// locale-matched printers for them.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale every other catalog falls back to.
const BaseLocale = "en-US"

// Message keys used by the flat check card.
const (
	KeyTitle         = "flatcheck.title"
	KeyActor         = "flatcheck.actor"
	KeyTargets       = "flatcheck.targets"
	KeyResult        = "flatcheck.result"
	KeySuccess       = "flatcheck.success"
	KeyFailure       = "flatcheck.failure"
	KeyHideRollValue = "flatcheck.setting.hide_roll_value"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds every loaded locale as an x/text catalog.
type Bundle struct {
	builder *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
}

// LoadEmbedded loads the catalogs compiled into this package.
func LoadEmbedded() (*Bundle, error) {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return nil, err
	}
	return LoadFromFS(sub)
}

// LoadFromFS loads every *.yaml catalog at the root of fsys. Each file's
// locale must match its file name and the base locale must be present.
//
// Postcondition: Returns a Bundle whose first tag is BaseLocale, or a non-nil error.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	base := language.MustParse(BaseLocale)
	b := &Bundle{builder: catalog.NewBuilder(catalog.Fallback(base))}
	haveBase := false
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		want := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if strings.TrimSpace(file.Locale) != want {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name %q", p, file.Locale, want)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: parse locale tag: %w", p, err)
		}
		if len(file.Messages) == 0 {
			return nil, fmt.Errorf("catalog %s: messages map is required", p)
		}
		keys := make([]string, 0, len(file.Messages))
		for k := range file.Messages {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if strings.TrimSpace(k) == "" {
				return nil, fmt.Errorf("catalog %s: message key cannot be blank", p)
			}
			if err := b.builder.SetString(tag, k, file.Messages[k]); err != nil {
				return nil, fmt.Errorf("catalog %s: set %q: %w", p, k, err)
			}
		}
		if tag == base {
			haveBase = true
			b.tags = append([]language.Tag{tag}, b.tags...)
		} else {
			b.tags = append(b.tags, tag)
		}
	}
	if !haveBase {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Locales returns the loaded locale identifiers, base locale first.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.tags))
	for i, t := range b.tags {
		out[i] = t.String()
	}
	return out
}

// Match returns the loaded locale that best serves the requested one,
// falling back to BaseLocale for unknown or malformed input.
func (b *Bundle) Match(locale string) language.Tag {
	requested, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return b.tags[0]
	}
	_, idx, conf := b.matcher.Match(requested)
	if conf == language.No {
		return b.tags[0]
	}
	return b.tags[idx]
}

// Printer returns a message printer bound to the best match for locale.
func (b *Bundle) Printer(locale string) *message.Printer {
	return message.NewPrinter(b.Match(locale), message.Catalog(b.builder))
}
