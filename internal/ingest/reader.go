// Package ingest reads the known tag vocabulary offered by the filter panel.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/qepting91/devfeed/internal/domain"
)

// Tag names as the creation form accepts them: letters, digits, spaces and
// a few punctuation marks used by technology names (Node.js, C++, C#).
var tagRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} .+#/-]{0,31}$`)

// LoadTags reads a one-column CSV of tag names with a header row. Invalid and
// duplicate rows are skipped. An empty path yields domain.DefaultTags.
func LoadTags(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), domain.DefaultTags...), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTags(f)
}

// ReadTags parses the tags CSV from r.
func ReadTags(r io.Reader) ([]string, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1

	var tags []string
	seen := make(map[string]bool)
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, err
		}
		line++
		if line == 1 || len(record) == 0 {
			continue
		}

		tag := strings.TrimSpace(record[0])
		if !tagRegex.MatchString(tag) || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rn, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rn != '\uFEFF' {
		_ = br.UnreadRune()
	}
	return br
}
