package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/hupe1980/bkmeans/blobstore"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var errEmptyField = errors.New("empty field")

// ReadCSV parses numeric CSV records into a single-column frame.
//
// Each record becomes one vector. Lines starting with '#' are comments.
// A first record that does not parse as numbers is treated as a header.
// Empty fields are errors on every line, the first included.
// Records may differ in length; the trainer rejects mismatched rows.
func ReadCSV(r io.Reader, column string) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]float64
	for record := 1; ; record++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		vec, field, perr := parseRecord(rec)
		if perr != nil {
			if record == 1 && field < 0 {
				continue // header
			}
			l, _ := cr.FieldPos(0)
			if field >= 0 {
				return nil, fmt.Errorf("csv line %d: empty field %d", l, field+1)
			}
			return nil, fmt.Errorf("csv line %d: %w", l, perr)
		}
		rows = append(rows, vec)
	}

	return FromVectors(column, rows), nil
}

// parseRecord converts rec to a vector. For an empty field it returns the
// field's zero-based index with errEmptyField; otherwise the index is -1.
func parseRecord(rec []string) ([]float64, int, error) {
	vec := make([]float64, 0, len(rec))
	for i, field := range rec {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, i, errEmptyField
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, -1, err
		}
		vec = append(vec, v)
	}
	return vec, -1, nil
}

// Open reads a local CSV file into a single-column frame.
// Files ending in .gz, .zst or .lz4 are decompressed transparently.
func Open(path string, column string) (*Frame, error) {
	return Load(context.Background(), blobstore.NewLocalStore(""), path, column)
}

// Load reads the named CSV blob from store into a single-column frame,
// decompressing by file extension like Open.
func Load(ctx context.Context, store blobstore.BlobStore, name string, column string) (*Frame, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	r, closeFn, err := decompress(blob, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer closeFn()

	frame, err := ReadCSV(r, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return frame, nil
}

func decompress(r io.Reader, name string) (io.Reader, func(), error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip: %w", err)
		}
		return gz, func() { _ = gz.Close() }, nil
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open zstd: %w", err)
		}
		return dec, dec.Close, nil
	case ".lz4":
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}
