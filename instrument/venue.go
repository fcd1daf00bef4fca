package instrument

import "fmt"

// Venue enumerates the exchanges, chains, and DEX protocols an instrument
// can be rooted in. Stable across deployments: do not renumber.
type Venue uint16

const (
	VenueUnknown Venue = 0
	VenueKraken  Venue = 1
	VenueBinance Venue = 2
	VenueCoinbase Venue = 3
	VenueNASDAQ  Venue = 10
	VenueNYSE    Venue = 11
	VenueEthereum Venue = 100
	VenuePolygon  Venue = 101
	VenueArbitrum Venue = 102
	VenueUniswapV2 Venue = 200
	VenueUniswapV3 Venue = 201
)

var venueNames = map[Venue]string{
	VenueKraken:    "kraken",
	VenueBinance:   "binance",
	VenueCoinbase:  "coinbase",
	VenueNASDAQ:    "nasdaq",
	VenueNYSE:      "nyse",
	VenueEthereum:  "ethereum",
	VenuePolygon:   "polygon",
	VenueArbitrum:  "arbitrum",
	VenueUniswapV2: "uniswap_v2",
	VenueUniswapV3: "uniswap_v3",
}

// String returns the human-readable venue name, or "venue(N)" with the raw
// discriminant N if v is not a recognized discriminant.
func (v Venue) String() string {
	if name, ok := venueNames[v]; ok {
		return name
	}
	return fmt.Sprintf("venue(%d)", uint16(v))
}

// Valid reports whether v is a known, decodable venue discriminant.
func (v Venue) Valid() bool {
	_, ok := venueNames[v]
	return ok
}

// AssetType enumerates the kind of asset an instrument ID refers to.
type AssetType uint8

const (
	AssetTypeUnknown AssetType = 0
	AssetTypeCoin    AssetType = 1
	AssetTypeToken   AssetType = 2
	AssetTypeStock   AssetType = 3
	AssetTypePool    AssetType = 4
	AssetTypeOption  AssetType = 5
	AssetTypeFuture  AssetType = 6
)

var assetTypeNames = map[AssetType]string{
	AssetTypeCoin:   "coin",
	AssetTypeToken:  "token",
	AssetTypeStock:  "stock",
	AssetTypePool:   "pool",
	AssetTypeOption: "option",
	AssetTypeFuture: "future",
}

func (a AssetType) String() string {
	if name, ok := assetTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("asset_type(%d)", uint8(a))
}

func (a AssetType) Valid() bool {
	_, ok := assetTypeNames[a]
	return ok
}
