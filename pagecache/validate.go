package pagecache

import (
	"fmt"

	"github.com/tsawler/pagina/model"
)

// Validate checks a freshly deserialized store against the live document
// body: break offsets must be non-decreasing, must fall inside the body's
// flow range, and must point at a node of the claimed kind. The first
// violation disqualifies the whole store; the caller must stop using it and
// lay out uncached. Records are hints consumed blindly during layout, so a
// store that lies about its document cannot be partially trusted.
func Validate(s *Store, body *model.Body) error {
	flowLen := uint32(body.FlowLen())
	var prev uint32
	for i, br := range s.breaks {
		if br.Offset < prev {
			return fmt.Errorf("%w: break %d: offset %d after offset %d breaks ordering",
				ErrUnusable, i, br.Offset, prev)
		}
		if br.Offset >= flowLen {
			return fmt.Errorf("%w: break %d: offset %d outside body of %d flow elements",
				ErrUnusable, i, br.Offset, flowLen)
		}
		if kind := body.FlowKind(int(br.Offset)); !br.Kind.Matches(kind) {
			return fmt.Errorf("%w: break %d: cached %v, document has %v at offset %d",
				ErrUnusable, i, br.Kind, kind, br.Offset)
		}
		prev = br.Offset
	}
	return nil
}
