// Package i18n localizes xliffkit's own user-facing strings.
//
// It wraps the gotext library; catalogs are embedded in the binary under
// locales/{lang}/LC_MESSAGES/xliffkit.po and selected from the environment
// at startup. A tool whose main audience is Arabic translators should speak
// Arabic back to them.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "xliffkit"

var locale *gotext.Locale

// Init loads the catalog for lang, or for the language detected from the
// LANGUAGE / LC_ALL / LC_MESSAGES / LANG environment variables (in GNU
// gettext priority order) when lang is empty. Call once at startup.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	locale = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	locale.AddDomain(domain)
	locale.SetDomain(domain)
}

// T translates a string, returning msgid unchanged when no translation is
// available.
func T(msgid string) string {
	if locale == nil {
		return msgid
	}
	return locale.Get(msgid)
}

// N translates a string with plural forms, applying the target language's
// plural formula.
func N(singular, plural string, n int) string {
	if locale == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return locale.GetN(singular, plural, n)
}

// detectLanguage picks the user's language from the environment following
// GNU gettext conventions.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE can be a colon-separated list; take the first entry.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// Strip the encoding suffix ("ar_EG.UTF-8" -> "ar_EG").
		val, _, _ = strings.Cut(val, ".")
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
