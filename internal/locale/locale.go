// Package locale renders the board's human-readable labels and messages.
package locale

import (
	"embed"
	"fmt"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"proja/internal/models"
)

const (
	LanguageEn = "en"
	LanguageRu = "ru"
)

//go:embed translation/*.toml
var translations embed.FS

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

// NewBundle loads the embedded translation files.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := translations.ReadDir("translation")
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(translations, path.Join("translation", e.Name())); err != nil {
			return nil, fmt.Errorf("load translation %s: %w", e.Name(), err)
		}
	}
	return bundle, nil
}

// Normalize maps a language preference (a tag or an Accept-Language value)
// onto one of the supported languages, defaulting to English.
func Normalize(pref string) string {
	if pref == "" {
		return LanguageEn
	}
	_, idx := language.MatchStrings(matcher, pref)
	base, _ := supported[idx].Base()
	return base.String()
}

// Resolve maps an Accept-Language value onto a supported language, returning
// fallback when the value names none of them.
func Resolve(header, fallback string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Catalog localizes messages for a single language.
type Catalog struct {
	lang      string
	localizer *i18n.Localizer
}

// New builds a Catalog for lang, falling back to English for missing messages.
func New(bundle *i18n.Bundle, lang string) *Catalog {
	lang = Normalize(lang)
	return &Catalog{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang, LanguageEn),
	}
}

// Lang returns the catalog language.
func (c *Catalog) Lang() string {
	return c.lang
}

// Message returns the translated message or the id itself when no translation exists.
func (c *Catalog) Message(id string, data map[string]any) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		zap.L().Warn("translation not found", zap.String("lang", c.lang), zap.String("message_id", id), zap.Error(err))
		return id
	}
	return msg
}

// StatusLabel returns the column title for s.
func (c *Catalog) StatusLabel(s models.Status) string {
	return c.Message("status_"+string(s), nil)
}

// PriorityLabel returns the label for p, or "" when unset.
func (c *Catalog) PriorityLabel(p models.Priority) string {
	if p == "" {
		return ""
	}
	return c.Message("priority_"+string(p), nil)
}

// TimeInStatus localizes the just-moved sentinel and passes other labels through.
func (c *Catalog) TimeInStatus(label string) string {
	if label == models.JustChanged {
		return c.Message("time_just_changed", nil)
	}
	return label
}

// DefaultAuthor returns the signature of comments posted without an author.
func (c *Catalog) DefaultAuthor() string {
	return c.Message("default_author", nil)
}

// TaskMoved renders the toast shown after a card changes column.
func (c *Catalog) TaskMoved(taskTitle string, s models.Status) (string, string) {
	return c.Message("toast_status_title", nil),
		c.Message("toast_status_description", map[string]any{
			"Title":  taskTitle,
			"Status": c.StatusLabel(s),
		})
}

// CommentAdded renders the toast shown after a comment is appended.
func (c *Catalog) CommentAdded(string) (string, string) {
	return c.Message("toast_comment_title", nil), c.Message("toast_comment_description", nil)
}
