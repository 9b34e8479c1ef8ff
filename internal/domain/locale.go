package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// LocalizedString holds one value per locale, keyed by a BCP 47 tag such as "en" or "pt-BR".
type LocalizedString map[string]string

// NormalizeLocale canonicalizes a locale key. Legacy underscore forms ("en_US") are accepted.
// Keys that do not parse are returned unchanged.
func NormalizeLocale(locale string) string {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return locale
	}
	return tag.String()
}

// Set stores value under the normalized locale.
func (l LocalizedString) Set(locale, value string) {
	l[NormalizeLocale(locale)] = value
}

// Get returns the value for locale, or the value for fallback when locale has none.
func (l LocalizedString) Get(locale, fallback string) string {
	if v, ok := l[NormalizeLocale(locale)]; ok && v != "" {
		return v
	}
	return l[NormalizeLocale(fallback)]
}

// Locales returns the locales that carry a non-empty value.
func (l LocalizedString) Locales() []string {
	var out []string
	for k, v := range l {
		if v != "" {
			out = append(out, k)
		}
	}
	return out
}
