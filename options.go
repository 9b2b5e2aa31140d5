package pagina

import (
	"github.com/tsawler/pagina/layout"
	"github.com/tsawler/pagina/model"
)

// LayoutOptions holds the page geometry for a pagination pass. The zero
// value behaves like DefaultLayoutOptions: an unset page size means A4,
// unset margins mean one inch on every side. Callers who need zero margins
// or a custom measurer use layout.Config directly.
type LayoutOptions struct {
	// PageSize is the physical page size in twips.
	PageSize model.Size
	// Margins bound the content area on each page.
	Margins layout.Margins
}

// DefaultLayoutOptions returns A4 with one-inch margins.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		PageSize: layout.A4,
		Margins:  layout.UniformMargins(model.FromInches(1)),
	}
}

// config translates the options into a layout configuration, filling unset
// fields from the defaults.
func (o LayoutOptions) config() layout.Config {
	cfg := layout.DefaultConfig()
	if o.PageSize.W > 0 && o.PageSize.H > 0 {
		cfg.PageSize = o.PageSize
	}
	if o.Margins != (layout.Margins{}) {
		cfg.Margins = o.Margins
	}
	return cfg
}
