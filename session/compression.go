package session

import "fmt"

// Compression identifies the snapshot body compression. The set is closed;
// new algorithms extend the constant block and codecFor together.
type Compression uint8

const (
	CompressionNone Compression = 0x1 // CompressionNone stores the body uncompressed.
	CompressionZstd Compression = 0x2 // CompressionZstd selects Zstandard.
	CompressionS2   Compression = 0x3 // CompressionS2 selects S2.
	CompressionLZ4  Compression = 0x4 // CompressionLZ4 selects LZ4 block compression.
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// codec compresses and decompresses snapshot bodies. Implementations must
// be safe for concurrent use.
type codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

func codecFor(c Compression) (codec, error) {
	switch c {
	case CompressionNone:
		return noopCodec{}, nil
	case CompressionZstd:
		return zstdCodec{}, nil
	case CompressionS2:
		return s2Codec{}, nil
	case CompressionLZ4:
		return lz4Codec{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

// noopCodec passes the body through untouched. The returned slice aliases
// the input.
type noopCodec struct{}

func (noopCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noopCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
