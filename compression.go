package gnocchi

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type Compression byte

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZip
	CompressionXZ
	CompressionZlib
	CompressionBZip2
)

// Magic byte signatures from https://stackoverflow.com/a/19127748/199475
var compressionSigs = map[Compression][]byte{
	CompressionGzip:  {0x1f, 0x8b, 0x08},
	CompressionZip:   {0x50, 0x4b, 0x03, 0x04},
	CompressionXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	CompressionZlib:  {0x78, 0x9c},
	CompressionBZip2: {0x42, 0x5a, 0x68},
}

// DetectCompression matches the leading bytes of a stream against known
// compression signatures. Unrecognized data is reported as uncompressed.
func DetectCompression(leading []byte) Compression {
	for c, sig := range compressionSigs {
		if len(leading) >= len(sig) && bytes.Equal(leading[:len(sig)], sig) {
			return c
		}
	}

	return CompressionNone
}

// MaybeDecompress wraps r with the decompressor implied by its leading
// bytes, if any. The stream is only peeked, never consumed, so this works
// for non-seekable sources such as Google Storage readers.
func MaybeDecompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, 4096*8)

	leading, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, pfx.Err(err)
	}

	switch DetectCompression(leading) {
	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return gz, nil
	case CompressionZip:
		return zipstream.NewReader(br), nil
	case CompressionXZ:
		xzr, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return xzr, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return zr, nil
	case CompressionBZip2:
		return bzip2.NewReader(br), nil
	}

	return br, nil
}
