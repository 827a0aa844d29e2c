// Package locale holds the translation tables used to render in-game messages.
package locale

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var defaultLocales []byte

// Lang identifies a supported message language.
type Lang int

const (
	English Lang = iota
	French
	German
	Polish
)

var langCodes = [...]string{"en", "fr", "de", "pl"}

func (l Lang) String() string {
	if l < 0 || int(l) >= len(langCodes) {
		return fmt.Sprintf("Lang(%d)", int(l))
	}
	return langCodes[l]
}

// ParseLang accepts a language code ("fr"), an English name ("french") or the
// numeric index of the legacy hook configuration ("1").
func ParseLang(s string) (Lang, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "en", "english":
		return English, nil
	case "fr", "french", "français", "francais":
		return French, nil
	case "de", "german", "deutsch":
		return German, nil
	case "pl", "polish", "polski":
		return Polish, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(langCodes) {
		return Lang(n), nil
	}
	return English, fmt.Errorf("unsupported language: %q", s)
}

// Catalog is the full key -> language code -> text mapping.
type Catalog struct {
	entries map[string]map[string]string
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := parseCatalog(defaultLocales)
	if err != nil {
		panic(fmt.Sprintf("locale: embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads an operator-supplied YAML file and merges it over the
// embedded catalog. An empty path returns the embedded catalog.
func LoadFile(path string) (*Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locale file: %w", err)
	}
	override, err := parseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("parsing locale file: %w", err)
	}

	for key, byLang := range override.entries {
		if base.entries[key] == nil {
			base.entries[key] = make(map[string]string, len(byLang))
		}
		for code, text := range byLang {
			base.entries[key][code] = text
		}
	}
	return base, nil
}

func parseCatalog(data []byte) (*Catalog, error) {
	entries := make(map[string]map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return &Catalog{entries: entries}, nil
}

// Table resolves every key for one language into an immutable table.
func (c *Catalog) Table(l Lang) Table {
	code := l.String()
	resolved := make(map[string]string, len(c.entries))
	for key, byLang := range c.entries {
		if text, ok := byLang[code]; ok && text != "" {
			resolved[key] = text
			continue
		}
		if text, ok := byLang[English.String()]; ok {
			resolved[key] = text
		}
	}
	return Table{lang: l, entries: resolved}
}

// Table is a read-only translation table for a single language. The zero
// value returns keys unchanged.
type Table struct {
	lang    Lang
	entries map[string]string
}

// Lang returns the language of the table.
func (t Table) Lang() Lang { return t.lang }

// T returns the text for key, or the key itself when it is unknown.
func (t Table) T(key string) string {
	if text, ok := t.entries[key]; ok {
		return text
	}
	return key
}
