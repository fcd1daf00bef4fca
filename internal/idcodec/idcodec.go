// Package idcodec provides the pure ID-to-string debug helper spec.md §9
// requires: because instrument IDs replace a centralized registry, the
// implementation must give debuggers a way to turn an opaque ID back into
// something readable without a lookup table.
package idcodec

import (
	"fmt"

	"protov2.dev/core/instrument"
)

// DecodeToString renders id as "venue:asset_type:asset_id" for logs and
// debuggers. It never fails: unknown venue/asset_type discriminants render
// as their numeric form via Venue.String()/AssetType.String().
func DecodeToString(id instrument.ID) string {
	return fmt.Sprintf("%s:%s:%#016x", id.Venue, id.AssetType, id.AssetID)
}
