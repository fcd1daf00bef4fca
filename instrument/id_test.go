package instrument

import "testing"

func TestTokenAddressRoundTrip(t *testing.T) {
	id, err := FromTokenAddress(VenueEthereum, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	if err != nil {
		t.Fatalf("FromTokenAddress: %v", err)
	}
	if id.AssetType != AssetTypeToken {
		t.Fatalf("asset type = %v, want Token", id.AssetType)
	}
	v, err := id.VenueOf()
	if err != nil || v != VenueEthereum {
		t.Fatalf("VenueOf() = %v, %v", v, err)
	}
	wire := id.Bytes()
	decoded := FromBytes(wire)
	if !decoded.Equal(id) {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, id)
	}
}

func TestFromTokenAddressInvalid(t *testing.T) {
	if _, err := FromTokenAddress(VenueEthereum, "not-an-address"); err != ErrAddressParse {
		t.Fatalf("err = %v, want ErrAddressParse", err)
	}
}

func TestFromSymbolRejectsNonSpotAssetType(t *testing.T) {
	if _, err := FromSymbol(VenueKraken, AssetTypeToken, "BTC"); err != ErrInvalidAssetType {
		t.Fatalf("err = %v, want ErrInvalidAssetType", err)
	}
}

func TestPoolOrderIndependent(t *testing.T) {
	a, _ := FromSymbol(VenueUniswapV2, AssetTypeCoin, "WETH")
	b, _ := FromSymbol(VenueUniswapV2, AssetTypeCoin, "USDC")

	p1 := Pool(VenueUniswapV2, a, b, PoolProtocolConstantProduct)
	p2 := Pool(VenueUniswapV2, b, a, PoolProtocolConstantProduct)
	if !p1.Equal(p2) {
		t.Fatalf("pool id not order-independent: %+v != %+v", p1, p2)
	}

	// A different protocol discriminator for the same pair must differ.
	p3 := Pool(VenueUniswapV2, a, b, PoolProtocolConcentrated)
	if p1.Equal(p3) {
		t.Fatalf("pool id did not vary with protocol discriminator")
	}
}

func TestVenueAndAssetTypeAlwaysDecodable(t *testing.T) {
	id := ID{Venue: 0xFFFF, AssetType: 0xFF, AssetID: 1}
	if _, err := id.VenueOf(); err != ErrInvalidVenue {
		t.Fatalf("expected ErrInvalidVenue, got %v", err)
	}
	if _, err := id.AssetTypeOf(); err != ErrInvalidAssetType {
		t.Fatalf("expected ErrInvalidAssetType, got %v", err)
	}
}

func TestCacheKeyPreservesVenueAndAssetType(t *testing.T) {
	id, _ := FromSymbol(VenueKraken, AssetTypeCoin, "BTC")
	key := id.CacheKey()
	if Venue(key>>48) != VenueKraken {
		t.Fatalf("cache key lost venue")
	}
	if AssetType((key>>40)&0xFF) != AssetTypeCoin {
		t.Fatalf("cache key lost asset type")
	}
}
