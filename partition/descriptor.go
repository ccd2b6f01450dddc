package partition

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/BurntSushi/toml"
	"github.com/carbocation/pfx"

	gnocchi "github.com/maduhu/gnocchi"
)

// descriptor is the on-disk (TOML) encoding of a partition strategy:
//
//	strategy = "score_bucket"
//
//	[score_bucket]
//	width = 0.25
//
//	[sample]
//	prefix_length = 2
type descriptor struct {
	Strategy string `toml:"strategy"`

	ScoreBucket struct {
		Width float64 `toml:"width"`
	} `toml:"score_bucket"`

	Sample struct {
		PrefixLength int `toml:"prefix_length"`
	} `toml:"sample"`
}

// Load reads a partition-strategy descriptor file and resolves it to a
// Strategy. Unset parameters take conservative defaults.
func Load(ctx context.Context, path string, client *storage.Client) (Strategy, error) {
	rc, err := gnocchi.OpenLocation(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var d descriptor
	if _, err := toml.DecodeReader(rc, &d); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
	}

	switch d.Strategy {
	case "contig":
		return ByContig{}, nil
	case "score_bucket":
		width := d.ScoreBucket.Width
		if width <= 0 {
			width = 1
		}
		return ByScoreBucket{Width: width}, nil
	case "sample":
		length := d.Sample.PrefixLength
		if length <= 0 {
			length = 2
		}
		return BySamplePrefix{Length: length}, nil
	}

	return nil, pfx.Err(fmt.Errorf("%s: unknown partition strategy %q (options: contig, score_bucket, sample)", path, d.Strategy))
}
