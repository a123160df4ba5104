// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package i18n localizes outgoing mail. Every translations/active.*.toml
// file is loaded and its language becomes selectable via Accept-Language.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

var (
	mu      sync.RWMutex
	bundle  *i18n.Bundle
	matcher language.Matcher
)

type locale struct {
	tag       string
	localizer *i18n.Localizer
}

type localeKey struct{}

// Init loads the embedded translations. English is the fallback language.
func Init() error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(translationFS, "translations/active.*.toml")
	if err != nil {
		return err
	}
	for _, file := range files {
		if _, err := b.LoadMessageFileFS(translationFS, file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	// English first so it wins ties
	matcher = language.NewMatcher(b.LanguageTags())
	return nil
}

// WithLocale stores lang and its localizer in ctx.
func WithLocale(ctx context.Context, lang language.Tag) context.Context {
	mu.RLock()
	b := bundle
	mu.RUnlock()

	l := locale{tag: lang.String()}
	if b != nil {
		l.localizer = i18n.NewLocalizer(b, l.tag)
	}
	return context.WithValue(ctx, localeKey{}, l)
}

// GetLocale returns the locale of ctx, "en" when none is set.
func GetLocale(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey{}).(locale); ok {
		return l.tag
	}
	return "en"
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return TData(ctx, messageID, nil)
}

// TData translates a message with template data. Unknown IDs come back
// unchanged.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	localizer := getLocalizer(ctx)
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

// MatchLanguage picks the best loaded language for an Accept-Language
// header, reduced to its base (de-AT becomes de).
func MatchLanguage(acceptLanguage string) language.Tag {
	mu.RLock()
	m := matcher
	mu.RUnlock()
	if m == nil {
		return language.English
	}

	tag, _ := language.MatchStrings(m, acceptLanguage)
	base, _ := tag.Base()
	return language.Make(base.String())
}

func getLocalizer(ctx context.Context) *i18n.Localizer {
	if l, ok := ctx.Value(localeKey{}).(locale); ok && l.localizer != nil {
		return l.localizer
	}
	mu.RLock()
	defer mu.RUnlock()
	if bundle == nil {
		return nil
	}
	return i18n.NewLocalizer(bundle, "en")
}
