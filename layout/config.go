package layout

import (
	"github.com/tsawler/pagina/model"
	"github.com/tsawler/pagina/text"
)

// Standard page sizes in twips.
var (
	A4     = model.Size{W: 11906, H: 16838}
	Letter = model.Size{W: 12240, H: 15840}
	Legal  = model.Size{W: 12240, H: 20160}
)

// Margins are the page margins in twips.
type Margins struct {
	Top, Bottom, Left, Right model.Twips
}

// UniformMargins returns margins with the same value on all four sides.
func UniformMargins(m model.Twips) Margins {
	return Margins{Top: m, Bottom: m, Left: m, Right: m}
}

// Config controls a pagination pass.
type Config struct {
	// PageSize is the physical page size.
	PageSize model.Size
	// Margins bound the content area on each page.
	Margins Margins
	// Measurer supplies character metrics for line and row fitting.
	Measurer text.Measurer
}

// DefaultConfig returns the configuration for an A4 page with one-inch
// margins and the built-in fixed-pitch metrics.
func DefaultConfig() Config {
	return Config{
		PageSize: A4,
		Margins:  UniformMargins(model.FromInches(1)),
		Measurer: text.NewMetrics(),
	}
}

// BodyWidth returns the horizontal space available to content.
func (c Config) BodyWidth() model.Twips {
	return c.PageSize.W - c.Margins.Left - c.Margins.Right
}

// BodyHeight returns the vertical space available to content.
func (c Config) BodyHeight() model.Twips {
	return c.PageSize.H - c.Margins.Top - c.Margins.Bottom
}
