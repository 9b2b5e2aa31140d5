// Package text provides text measurement and line breaking for the layout
// engine.
//
// # Measurement
//
// The [Measurer] interface abstracts the two quantities pagination needs
// from a font: the horizontal advance of a rune and the height of a line.
// The built-in [Metrics] implementation is a fixed-pitch 12-point face,
// which keeps layout deterministic when no real font metrics are wired in:
//
//	m := text.NewMetrics()
//	spans := text.Wrap("some paragraph text", width, m)
//
// # Line Breaking
//
// [Wrap] breaks a string into line spans that fit a given width, using
// greedy word wrapping. Each [Span] is a rune range into the original
// string, so callers can address split points without copying content.
// [WrapRange] wraps only part of a string, which is how continuation
// frames re-break the remainder of a paragraph.
package text
