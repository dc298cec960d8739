// Package common holds identifiers shared across binaries and servers.
package common

// PackageName identifies this service in logs and metrics.
const PackageName = "nft-auction"

// Version is the service version, overridable at build time with
// -ldflags "-X github.com/bhavyakukkar/near-nft-auction-demo/common.Version=...".
var Version = "dev"
