package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docx2md/internal/doctree"
)

// CSVParser handles CSV files. The whole file becomes one table whose first
// record is the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	out := &doctree.Document{Title: Title(filename)}
	if len(records) > 0 {
		out.Body = []doctree.Block{&doctree.Table{Rows: records}}
	}
	return out, nil
}
