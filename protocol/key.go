package protocol

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// AssetKey is the fixed-width registry key standing in for a
// (collection, token) pair. The compound identity is not retained, so
// two pairs that collide under the hash are indistinguishable to the
// registry.
type AssetKey uint64

// String returns the key in base 10, as used in logs and storage.
func (k AssetKey) String() string {
	return strconv.FormatUint(uint64(k), 10)
}

// DeriveAssetKey maps a (collection, token) pair to its AssetKey.
// The derivation is deterministic and stable across process restarts:
// xxhash-64 over the collection id, a zero separator, and the token id.
// It is not collision resistant.
func DeriveAssetKey(collection AccountID, tokenID TokenID) AssetKey {
	d := xxhash.New()
	d.WriteString(string(collection))
	d.Write([]byte{0})
	d.WriteString(string(tokenID))
	return AssetKey(d.Sum64())
}
