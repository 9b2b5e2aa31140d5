package text

import "github.com/tsawler/pagina/model"

// Measurer supplies the character metrics the layout engine uses to fit
// lines and table rows. Measurement policy is deliberately outside the
// engine: implementations may wrap real font data or return synthetic
// values, as long as they are stable for the lifetime of a layout pass.
type Measurer interface {
	// AdvanceWidth returns the horizontal advance of a single rune.
	AdvanceWidth(r rune) model.Twips
	// LineHeight returns the height one line of body text occupies,
	// including leading.
	LineHeight() model.Twips
}

// Metrics is a fixed-pitch Measurer. Every rune advances by the same
// amount, which makes layout results reproducible across platforms and
// independent of installed fonts.
type Metrics struct {
	Advance model.Twips
	Height  model.Twips
}

// NewMetrics returns metrics for a 12-point fixed-pitch face: a 0.6 em
// advance and 1.2 em line height, the classic typewriter proportions.
func NewMetrics() *Metrics {
	return &Metrics{
		Advance: model.FromPoints(7.2),
		Height:  model.FromPoints(14.4),
	}
}

// AdvanceWidth returns the fixed advance regardless of the rune.
func (m *Metrics) AdvanceWidth(r rune) model.Twips {
	return m.Advance
}

// LineHeight returns the fixed line height.
func (m *Metrics) LineHeight() model.Twips {
	return m.Height
}
