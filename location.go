package gnocchi

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// IsGoogleStorage reports whether the location names a gs:// object.
func IsGoogleStorage(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// MaybeOpenFromGoogleStorage opens path for sequential reading. gs:// paths
// are fetched with the provided client; anything else is treated as a local
// file.
func MaybeOpenFromGoogleStorage(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	if IsGoogleStorage(path) {
		if client == nil {
			return nil, pfx.Err(fmt.Errorf("%s: no Google Storage client configured", path))
		}

		pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
		if len(pathParts) != 2 {
			return nil, pfx.Err(fmt.Errorf("tried to split google storage path %q into 2 parts, but got %d", path, len(pathParts)))
		}

		rdr, err := client.Bucket(pathParts[0]).Object(pathParts[1]).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
		}

		return rdr, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return f, nil
}

// OpenLocation opens a local or gs:// location, expanding a leading ~ and
// transparently decompressing known formats.
func OpenLocation(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	raw, err := MaybeOpenFromGoogleStorage(ctx, path, client)
	if err != nil {
		return nil, err
	}

	rd, err := MaybeDecompress(raw)
	if err != nil {
		raw.Close()
		return nil, err
	}

	return &readCloser{Reader: rd, underlying: raw}, nil
}

// readCloser propagates Close to the underlying handle when the decompressor
// wrapping it has no Close of its own.
type readCloser struct {
	io.Reader
	underlying io.Closer
}

func (r *readCloser) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		c.Close()
	}

	return r.underlying.Close()
}
