package instrument

import "errors"

var (
	// ErrInvalidVenue is returned when a raw venue discriminant does not
	// decode to a known Venue.
	ErrInvalidVenue = errors.New("instrument: unknown venue")
	// ErrInvalidAssetType is returned when a raw asset-type discriminant
	// does not decode to a known AssetType.
	ErrInvalidAssetType = errors.New("instrument: unknown asset type")
	// ErrAddressParse is returned when a token address string is not a
	// well-formed 20-byte hex address.
	ErrAddressParse = errors.New("instrument: address parse")
)
