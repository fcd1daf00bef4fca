package instrument

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ID is the bijective 128-bit instrument identifier described in spec.md
// §3.1. It is never looked up in a registry: callers construct it on demand
// from raw venue data and compare it by value.
//
// Wire layout (16 bytes, little-endian, matching the TLV bodies that embed
// it): venue u16 | asset_type u8 | reserved u8 | 4 zero bytes | asset_id u64
// (asset_id at offset 8).
type ID struct {
	Venue     Venue
	AssetType AssetType
	reserved  uint8
	AssetID   uint64
}

// PoolProtocol distinguishes pool layouts that would otherwise hash
// identically for the same token pair.
type PoolProtocol uint8

const (
	PoolProtocolConstantProduct PoolProtocol = 0 // Uniswap-V2-style
	PoolProtocolConcentrated    PoolProtocol = 1 // Uniswap-V3-style
)

// Bytes encodes the ID to its 16-byte little-endian wire form.
func (id ID) Bytes() [16]byte {
	var out [16]byte
	binary.LittleEndian.PutUint16(out[0:2], uint16(id.Venue))
	out[2] = byte(id.AssetType)
	out[3] = id.reserved
	binary.LittleEndian.PutUint64(out[8:16], id.AssetID)
	return out
}

// FromBytes decodes a 16-byte little-endian wire form back into an ID
// without validating the venue/asset_type discriminants; use VenueOf /
// AssetTypeOf for validated decode.
func FromBytes(b [16]byte) ID {
	return ID{
		Venue:     Venue(binary.LittleEndian.Uint16(b[0:2])),
		AssetType: AssetType(b[2]),
		reserved:  b[3],
		AssetID:   binary.LittleEndian.Uint64(b[8:16]),
	}
}

// VenueOf infallibly decodes the venue field, failing loudly (never
// silently defaulting) on an unrecognized discriminant.
func (id ID) VenueOf() (Venue, error) {
	if !id.Venue.Valid() {
		return VenueUnknown, ErrInvalidVenue
	}
	return id.Venue, nil
}

// AssetTypeOf infallibly decodes the asset_type field.
func (id ID) AssetTypeOf() (AssetType, error) {
	if !id.AssetType.Valid() {
		return AssetTypeUnknown, ErrInvalidAssetType
	}
	return id.AssetType, nil
}

// CacheKey folds the 128-bit identifier into a 64-bit cache key. venue and
// asset_type survive; asset_id is truncated to its low 40 bits. This is
// lossy by design: two distinct IDs share a cache key only when they have
// the same venue and asset_type and the same low 40 bits of asset_id, so
// callers must disambiguate with the full ID before trusting cache-key
// equality. Never transmit a
// cache key on the wire in place of the full ID.
func (id ID) CacheKey() uint64 {
	const assetIDMask = (uint64(1) << 40) - 1
	return uint64(id.Venue)<<48 | uint64(id.AssetType)<<40 | (id.AssetID & assetIDMask)
}

// Equal reports field-wise equality; two IDs are equal iff all four fields
// (venue, asset_type, reserved, asset_id) are equal.
func (id ID) Equal(other ID) bool {
	return id.Venue == other.Venue &&
		id.AssetType == other.AssetType &&
		id.reserved == other.reserved &&
		id.AssetID == other.AssetID
}

// FromTokenAddress constructs a Token instrument ID from a 20-byte on-chain
// contract address, hex-encoded with or without a "0x" prefix. asset_id is
// the first 8 bytes of the lowercased address, interpreted big-endian.
func FromTokenAddress(venue Venue, addressHex string) (ID, error) {
	addr, err := parseAddress(addressHex)
	if err != nil {
		return ID{}, err
	}
	return ID{
		Venue:     venue,
		AssetType: AssetTypeToken,
		AssetID:   binary.BigEndian.Uint64(addr[:8]),
	}, nil
}

func parseAddress(addressHex string) ([20]byte, error) {
	var out [20]byte
	s := strings.ToLower(strings.TrimPrefix(addressHex, "0x"))
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 20 {
		return out, ErrAddressParse
	}
	copy(out[:], raw)
	return out, nil
}

// FromSymbol constructs a Coin or Stock instrument ID from a ticker symbol.
// asset_id is a 64-bit stable hash (xxhash, a fast non-cryptographic hash
// with the same "fixed, stable digest" property the spec asks FNV-1a/SipHash
// for) of the uppercased symbol.
func FromSymbol(venue Venue, assetType AssetType, symbol string) (ID, error) {
	if assetType != AssetTypeCoin && assetType != AssetTypeStock {
		return ID{}, ErrInvalidAssetType
	}
	upper := strings.ToUpper(symbol)
	return ID{
		Venue:     venue,
		AssetType: assetType,
		AssetID:   xxhash.Sum64String(upper),
	}, nil
}

// Pool constructs a Pool instrument ID from two full token IDs and a
// protocol discriminator. It is order-independent in (a, b): both
// traversal directions of a pair sort to the same byte sequence before
// hashing, so Pool(v, a, b, d) == Pool(v, b, a, d) (spec.md §3.1: "sort by
// numeric value before hashing"; per spec.md §9's Open Question, the
// order-preserving alternative scheme is rejected).
//
// The two token IDs are hashed in full (not folded through CacheKey),
// matching the original source's InstrumentId::pool(venue, a, b) taking
// complete InstrumentId values, not a lossy cache key — folding to
// CacheKey here would discard the high 24 bits of each token's asset_id
// and let distinct tokens collide.
func Pool(venue Venue, a, b ID, discriminator PoolProtocol) ID {
	aBytes, bBytes := a.Bytes(), b.Bytes()
	if compareIDBytes(aBytes, bBytes) > 0 {
		aBytes, bBytes = bBytes, aBytes
	}
	var buf [33]byte
	copy(buf[0:16], aBytes[:])
	copy(buf[16:32], bBytes[:])
	buf[32] = byte(discriminator)
	return ID{
		Venue:     venue,
		AssetType: AssetTypePool,
		AssetID:   xxhash.Sum64(buf[:]),
	}
}

// compareIDBytes orders two IDs' 16-byte wire forms by the numeric value
// they represent (venue, then asset_type, then reserved, then asset_id,
// most significant field first), matching spec.md §3.1's "sort by numeric
// value" rule rather than a raw byte-lexicographic compare of the
// little-endian wire form.
func compareIDBytes(a, b [16]byte) int {
	idA, idB := FromBytes(a), FromBytes(b)
	if idA.Venue != idB.Venue {
		if idA.Venue < idB.Venue {
			return -1
		}
		return 1
	}
	if idA.AssetType != idB.AssetType {
		if idA.AssetType < idB.AssetType {
			return -1
		}
		return 1
	}
	if idA.reserved != idB.reserved {
		if idA.reserved < idB.reserved {
			return -1
		}
		return 1
	}
	switch {
	case idA.AssetID < idB.AssetID:
		return -1
	case idA.AssetID > idB.AssetID:
		return 1
	default:
		return 0
	}
}
