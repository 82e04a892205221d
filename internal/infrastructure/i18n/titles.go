// Package i18n localizes the few strings the print view renders server side.
package i18n

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/dashprint/backend/internal/domain/printing"
)

const pageTitleKey = "Page %d"

// Supported lists the languages with translations, the first being the fallback
var Supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Russian,
	language.Chinese,
}

var pageTitles = map[language.Tag]string{
	language.English: "Page %d",
	language.German:  "Seite %d",
	language.French:  "Page %d",
	language.Russian: "Страница %d",
	language.Chinese: "第 %d 页",
}

var (
	buildOnce sync.Once
	builder   *catalog.Builder
	loadErr   error
	matcher   = language.NewMatcher(Supported)
)

func load() {
	builder, loadErr = buildCatalog(pageTitles)
}

func buildCatalog(titles map[language.Tag]string) (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msg := range titles {
		if err := b.SetString(tag, pageTitleKey, msg); err != nil {
			return nil, fmt.Errorf("page title for %s: %w", tag, err)
		}
	}
	return b, nil
}

// Load builds the translation catalog. It runs on first use anyway; calling
// it at start up surfaces a broken catalog before the first print.
func Load() error {
	buildOnce.Do(load)
	return loadErr
}

// Match picks the best supported language for an Accept-Language header
// value or a plain tag. Unknown input yields English.
func Match(accept ...string) language.Tag {
	_, index := language.MatchStrings(matcher, accept...)
	return Supported[index]
}

// Titler returns a page titler producing "Page N" in the given language.
// Titles stay untranslated when the catalog failed to load.
func Titler(tag language.Tag) printing.PageTitler {
	var printer *message.Printer
	if err := Load(); err != nil {
		printer = message.NewPrinter(language.English)
	} else {
		printer = message.NewPrinter(tag, message.Catalog(builder))
	}
	return printing.PageTitlerFunc(func(number int) string {
		return printer.Sprintf(pageTitleKey, number)
	})
}
