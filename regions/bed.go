package regions

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"

	gnocchi "github.com/maduhu/gnocchi"
)

// Load reads a BED-style region file (contig, start, end; additional
// columns ignored) from a local or gs:// location. BED coordinates are
// already half-open, so they pass through unchanged.
func Load(ctx context.Context, path string, client *storage.Client) ([]Region, error) {
	rc, err := gnocchi.OpenLocation(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []Region

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") ||
			strings.HasPrefix(text, "track") || strings.HasPrefix(text, "browser") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, pfx.Err(fmt.Errorf("%s: line %d: expected at least 3 columns, got %d", path, line, len(fields)))
		}

		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: line %d: start: %v", path, line, err))
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: line %d: end: %v", path, line, err))
		}
		if end <= start {
			return nil, pfx.Err(fmt.Errorf("%s: line %d: region [%d,%d) is empty", path, line, start, end))
		}

		out = append(out, Region{Contig: fields[0], Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
	}

	return out, nil
}
