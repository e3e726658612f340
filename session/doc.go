// Package session persists analysis sessions as compact binary snapshots.
//
// A Snapshot bundles measured curves with the metrics extracted from them.
// Curves are stored as little-endian float64 columns and referenced from
// metrics by a stable label hash, so a snapshot survives reordering and
// detects corruption on load. The body is compressed with a selectable
// codec:
//
//	data, err := snap.Encode(session.CompressionZstd)
//	...
//	snap, err := session.Decode(data)
//
// Zstandard uses the pure-Go implementation by default; building with the
// cgozstd tag switches to the cgo gozstd binding.
package session
