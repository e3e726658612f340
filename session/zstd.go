package session

// zstdCodec selects one of two Zstandard implementations at build time:
// the pure-Go klauspost encoder by default, or the cgo-backed gozstd
// binding under the cgozstd build tag for deployments that want the
// reference implementation's throughput.
type zstdCodec struct{}
