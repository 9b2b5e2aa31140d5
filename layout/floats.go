package layout

import (
	"sort"

	"github.com/tsawler/pagina/model"
	"github.com/tsawler/pagina/pagecache"
)

// finishFloats resolves the floating objects of a page that is closing:
// stacking order is fixed, cached rectangles are matched, and whatever is
// still unpositioned is computed from the flow.
func (ps *pass) finishFloats(pg *PageFrame) {
	if len(pg.Floats) == 0 {
		return
	}
	sort.SliceStable(pg.Floats, func(i, j int) bool {
		return pg.Floats[i].Object.Z < pg.Floats[j].Object.Z
	})
	for i, f := range pg.Floats {
		f.Order = i
	}
	if ps.cursor != nil && pg.Number <= 0xFFFF {
		recs := ps.cursor.FloatsFor(uint16(pg.Number))
		seeded, ok := seedFloats(pg, recs, ps.version.TrustsObjectSize())
		ps.stats.SeededObjects += seeded
		if !ok {
			ps.stats.SkippedHints++
		}
	}
	placeFloats(pg, ps.cfg)
}

// seedFloats pairs the cached float records of a page against its live
// flow-positioned floats, nth record to nth object. A count mismatch means
// the cache is stale for this page: nothing is seeded and ok is false.
// Width and height are seeded only when the cache version vouches for
// them; older files keep their positions-only behavior.
func seedFloats(pg *PageFrame, recs []pagecache.FloatRecord, trustSize bool) (seeded int, ok bool) {
	if len(recs) == 0 {
		return 0, true
	}
	live := make([]*FloatFrame, 0, len(pg.Floats))
	for _, f := range pg.Floats {
		if f.Object.Auto && !f.Object.HeaderFooter {
			live = append(live, f)
		}
	}
	if len(recs) != len(live) {
		return 0, false
	}
	for i, rec := range recs {
		f := live[i]
		if f.Positioned() {
			continue
		}
		f.Pos = model.Point{X: rec.X, Y: rec.Y}
		if trustSize {
			f.Size = model.Size{W: rec.W, H: rec.H}
		}
		f.seeded = true
		seeded++
	}
	return seeded, true
}

// placeFloats computes positions for floats the cache did not seed. Flow
// placement stacks objects down the right content edge; fixed objects keep
// their declared positions and header/footer decorations pin to the top
// margin band.
func placeFloats(pg *PageFrame, cfg Config) {
	y := model.Twips(0)
	for _, f := range pg.Floats {
		if f.Positioned() {
			continue
		}
		if !f.Object.Auto {
			f.Pos = f.Object.Pos
			continue
		}
		if f.Object.HeaderFooter {
			f.Pos = model.Point{X: 0, Y: -cfg.Margins.Top}
			continue
		}
		x := cfg.BodyWidth() - f.Size.W
		if x < 0 {
			x = 0
		}
		f.Pos = model.Point{X: x, Y: y}
		y += f.Size.H
	}
}
