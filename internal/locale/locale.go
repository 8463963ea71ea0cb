// Package locale translates the user-facing strings of the listings views:
// the long-form date heading and the status messages.
package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-listings/internal/config"
	"github.com/tartampluch/go-listings/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// fallbacks are used when a key is missing from every loaded locale.
var fallbacks = map[string]string{
	config.TKeyNoListings:  config.FallbackNoListings,
	config.TKeyUnavailable: config.FallbackUnavailable,
	config.TKeyLoading:     config.FallbackLoading,
}

// Translator resolves translation keys for one language at a time.
// A nil *Translator renders English.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string
	languages []string
}

// New loads the embedded locale files and selects lang.
// Unknown languages fall back to config.DefaultLanguage.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		t.languages = append(t.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	t.SetLanguage(lang)
	return t
}

// SetLanguage switches the active language.
func (t *Translator) SetLanguage(lang string) {
	if !slices.Contains(t.languages, lang) {
		lang = config.DefaultLanguage
	}
	t.lang = lang
	t.localizer = i18n.NewLocalizer(t.bundle, lang)
}

// Language returns the active language code.
func (t *Translator) Language() string {
	if t == nil {
		return config.DefaultLanguage
	}
	return t.lang
}

// Languages lists the languages whose locale file loaded.
func (t *Translator) Languages() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.languages)
}

// Msg translates key. Missing keys yield the English fallback when one
// exists, otherwise the key itself.
func (t *Translator) Msg(key string) string {
	return t.localize(key, nil)
}

// FullDate renders the long-form heading of a date in the active language,
// e.g. "Wednesday, November 26th, 2025".
func (t *Translator) FullDate(d time.Time) string {
	if t == nil || t.localizer == nil {
		return engine.FormatFullDate(d)
	}

	day := d.Day()
	data := map[string]any{
		"Weekday": t.localize(config.TKeyWeekdayPrefix+strings.ToLower(d.Weekday().String()), nil),
		"Month":   t.localize(config.TKeyMonthPrefix+strings.ToLower(d.Month().String()), nil),
		"Day":     t.localize(ordinalKey(day), map[string]any{"Day": day}),
		"Year":    d.Year(),
	}

	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyFullDate,
		TemplateData: data,
	})
	if err != nil {
		t.logMissing(config.TKeyFullDate, err)
		return engine.FormatFullDate(d)
	}
	return msg
}

// ordinalKey maps a day of the month onto the key of its ordinal form.
func ordinalKey(day int) string {
	if day == 1 {
		return config.TKeyOrdinalOne
	}
	switch engine.Ordinal(day) {
	case "st":
		return config.TKeyOrdinalFirst
	case "nd":
		return config.TKeyOrdinalSecond
	case "rd":
		return config.TKeyOrdinalThird
	default:
		return config.TKeyOrdinalOther
	}
}

func (t *Translator) localize(key string, data map[string]any) string {
	if t != nil && t.localizer != nil {
		msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
		if err == nil {
			return msg
		}
		t.logMissing(key, err)
	}
	if fb, ok := fallbacks[key]; ok {
		return fb
	}
	return key
}

func (t *Translator) logMissing(key string, err error) {
	slog.Debug(config.MsgTransMissing,
		config.LogKeyComponent, config.CompI18n,
		config.LogKeyLang, t.lang,
		config.LogKeyKey, key,
		config.LogKeyError, err,
	)
}
