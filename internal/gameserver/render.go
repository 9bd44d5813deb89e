package gameserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"

	"github.com/cory-johannsen/pf2-flat-check/internal/i18n"
)

// Card styles applied to the posted message.
const (
	StyleSuccess = "flat-check-success"
	StyleFailure = "flat-check-failure"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Card is everything the chat card shows about one flat check.
type Card struct {
	DC             int
	ActorName      string
	ActorCondition string
	Targets        []TargetResult
	RollTotal      int
	Success        bool
	// HideRollValue replaces the rolled number with localized Success/Failure.
	HideRollValue bool
}

// Style returns the CSS class for the card's outcome.
func (c Card) Style() string {
	if c.Success {
		return StyleSuccess
	}
	return StyleFailure
}

type cardView struct {
	Style        string
	Title        string
	ActorLine    string
	TargetsLabel string
	TargetLines  []string
	ResultLabel  string
	RollText     string
}

// Renderer turns a Card into localized chat content.
type Renderer struct {
	tmpl   *template.Template
	bundle *i18n.Bundle
	locale string
}

// NewRenderer parses the embedded card template.
//
// Precondition: bundle must be non-nil.
// Postcondition: Returns a Renderer printing in the best match for locale, or a non-nil error.
func NewRenderer(bundle *i18n.Bundle, locale string) (*Renderer, error) {
	if bundle == nil {
		return nil, fmt.Errorf("gameserver: NewRenderer requires a non-nil bundle")
	}
	tmpl, err := template.ParseFS(templateFS, "templates/flat-check.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing card template: %w", err)
	}
	return &Renderer{tmpl: tmpl, bundle: bundle, locale: locale}, nil
}

// Locale reports the locale the renderer actually prints in.
func (r *Renderer) Locale() string {
	return r.bundle.Match(r.locale).String()
}

// RollText is what the card shows for the roll: the total, or the localized
// outcome when the roll value is hidden.
func (r *Renderer) RollText(c Card) string {
	if !c.HideRollValue {
		return strconv.Itoa(c.RollTotal)
	}
	p := r.bundle.Printer(r.locale)
	if c.Success {
		return p.Sprintf(i18n.KeySuccess)
	}
	return p.Sprintf(i18n.KeyFailure)
}

// Render produces the card's HTML content.
func (r *Renderer) Render(c Card) (string, error) {
	p := r.bundle.Printer(r.locale)
	view := cardView{
		Style:        c.Style(),
		Title:        p.Sprintf(i18n.KeyTitle, c.DC),
		TargetsLabel: p.Sprintf(i18n.KeyTargets),
		ResultLabel:  p.Sprintf(i18n.KeyResult),
		RollText:     r.RollText(c),
	}
	if c.ActorCondition != "" {
		view.ActorLine = p.Sprintf(i18n.KeyActor, c.ActorName, c.ActorCondition)
	}
	for _, t := range c.Targets {
		view.TargetLines = append(view.TargetLines, p.Sprintf(i18n.KeyActor, t.Name, t.Condition))
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "flat-check.html.tmpl", view); err != nil {
		return "", fmt.Errorf("rendering card: %w", err)
	}
	return buf.String(), nil
}
