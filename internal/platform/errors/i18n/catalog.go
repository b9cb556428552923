// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from the errors
// package to avoid a cycle).
type Code = string

// BaseLocale is the fallback locale.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// NewCatalog builds a catalog for a locale.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	return &Catalog{locale: locale, messages: messages}
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
	matcher    language.Matcher
	tags       []language.Tag
)

// Register installs a catalog for a locale and rebuilds the matcher.
// Locales register at init time; later registrations override earlier
// ones for the same locale.
func Register(locale string, messages map[Code]string) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()

	tag, err := language.Parse(locale)
	if err != nil {
		return
	}
	if _, exists := catalogs[locale]; !exists {
		tags = append(tags, tag)
	}
	catalogs[locale] = NewCatalog(locale, messages)
	matcher = language.NewMatcher(tags)
}

// GetCatalog returns the catalog best matching the requested locale.
// Falls back to en-US when no registered locale matches.
func GetCatalog(locale string) *Catalog {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()

	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	if c, ok := catalogs[requested]; ok {
		return c
	}

	if matcher != nil {
		if requestedTag, err := language.Parse(requested); err == nil {
			if _, index, confidence := matcher.Match(requestedTag); confidence > language.No {
				if c, ok := catalogs[tags[index].String()]; ok {
					return c
				}
			}
		}
	}

	if c, ok := catalogs[BaseLocale]; ok {
		return c
	}
	return NewCatalog(BaseLocale, nil)
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil/empty metadata so output
// stays consistent (template variables without metadata render empty).
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
