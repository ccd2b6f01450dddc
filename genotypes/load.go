package genotypes

import (
	"context"
	"strings"

	"cloud.google.com/go/storage"
)

// Load reads genotype records from a location, selecting the decoder by
// filename: .bgen files go through the BGI-indexed reader, anything
// containing .vcf is parsed as VCF, and everything else is treated as a
// delimited table.
func Load(ctx context.Context, path string, client *storage.Client) ([]Record, error) {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".bgen"):
		return LoadBGEN(path, "")
	case strings.Contains(lower, ".vcf"):
		return LoadVCF(ctx, path, client)
	}

	return LoadDelimited(ctx, path, client)
}
