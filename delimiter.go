package gnocchi

import (
	"bytes"

	"github.com/csimplestring/go-csv/detector"
)

// delimiterSampleSize caps how much of a file the detector inspects. Inputs
// can be large; the delimiter is evident from the leading rows.
const delimiterSampleSize = 64 * 1024

// DetermineDelimiter guesses the rune separating values in a delimited
// table. When the detector is uncertain (single-column files give it
// nothing to vote on), the header line decides between tab and the comma
// fallback.
func DetermineDelimiter(raw []byte) rune {
	sample := raw
	if len(sample) > delimiterSampleSize {
		sample = sample[:delimiterSampleSize]
	}

	if candidates := detector.New().DetectDelimiter(bytes.NewReader(sample), '"'); len(candidates) > 0 {
		return rune(candidates[0][0])
	}

	header := sample
	if i := bytes.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	if bytes.ContainsRune(header, '\t') {
		return '\t'
	}

	return ','
}
