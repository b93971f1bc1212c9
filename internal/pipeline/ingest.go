package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"os"

	"go-lifeexp-report/internal/model"
)

// ------------------- Ingestion -------------------

// Load reads a delimited file with a header row into a Table. The whole file
// is parsed before Load returns; the first schema violation aborts the load.
func Load(ctx context.Context, path string, schema model.Schema) (*model.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Path: path, Err: err}
	}
	defer file.Close()

	return LoadReader(ctx, file, path, schema)
}

// LoadReader is Load over an already opened reader; name is used in errors.
func LoadReader(ctx context.Context, r io.Reader, name string, schema model.Schema) (*model.Table, error) {
	binder, err := newRecordBinder(schema)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(skipBOM(r))
	csvReader.FieldsPerRecord = -1 // column count is checked against the schema per row

	table := &model.Table{Source: name}

	headers, err := csvReader.Read()
	if err == io.EOF {
		log.Printf("📄 CSV ingestion done: %s is empty", name)
		return table, nil
	}
	if err != nil {
		return nil, readError(name, err)
	}
	table.Columns = cleanHeaders(headers)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(name, err)
		}
		line, _ := csvReader.FieldPos(0)

		rec, err := binder.bind(row)
		if err != nil {
			var mismatch *SchemaMismatchError
			if errors.As(err, &mismatch) {
				mismatch.Path = name
				mismatch.Line = line
			}
			return nil, err
		}
		table.Records = append(table.Records, rec)

		if n := len(table.Records); n%1000 == 0 {
			log.Printf("📄 CSV: processed %d records from %s", n, name)
		}
	}

	log.Printf("📄 CSV ingestion done: %d records read from %s", len(table.Records), name)
	return table, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a leading UTF-8 byte order mark so that a quoted first
// header cell still parses
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}

// readError splits malformed CSV (a schema problem) from I/O failures.
func readError(name string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &SchemaMismatchError{Path: name, Line: parseErr.Line, Reason: parseErr.Err.Error()}
	}
	return &IoError{Path: name, Err: err}
}
