// Package spreadsheet extracts name/document pairs from client lists
// uploaded as .xlsx or .csv.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxRows caps how many data rows one upload may carry.
const MaxRows = 5000

var (
	ErrUnsupportedFormat = errors.New("unsupported file format; use .xlsx or .csv")
	ErrEmpty             = errors.New("spreadsheet has no rows")
	ErrTooManyRows       = fmt.Errorf("spreadsheet has more than %d rows", MaxRows)
)

// Row is one extracted record. Line is 1-based in the source sheet.
type Row struct {
	Line     int    `json:"line"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

// Parse reads data according to filename's extension.
func Parse(filename string, data []byte) ([]Row, error) {
	var (
		cells [][]string
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		cells, err = readXLSX(data)
	case ".csv", ".txt":
		cells, err = readCSV(data)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return extract(cells)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter picks ';' when the first line has more semicolons than
// commas, the usual export format of Brazilian-locale spreadsheet tools.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

var (
	nameHeaders = []string{"nome", "name", "cliente", "razao social", "razao"}
	docHeaders  = []string{"cpf/cnpj", "cpf", "cnpj", "documento", "document", "doc"}
)

func normalizeHeader(s string) string {
	r := strings.NewReplacer("á", "a", "à", "a", "ã", "a", "â", "a", "é", "e", "ê", "e",
		"í", "i", "ó", "o", "õ", "o", "ô", "o", "ú", "u", "ç", "c")
	return strings.TrimSpace(r.Replace(strings.ToLower(s)))
}

func matchHeader(cell string, keys []string) bool {
	h := normalizeHeader(cell)
	for _, k := range keys {
		if h == k || strings.HasPrefix(h, k+" ") || (len(k) > 3 && strings.Contains(h, k)) {
			return true
		}
	}
	return false
}

// findHeader scans the first few rows for a name and a document column.
func findHeader(cells [][]string) (row, nameCol, docCol int, ok bool) {
	for i := 0; i < len(cells) && i < 5; i++ {
		nameCol, docCol = -1, -1
		for j, c := range cells[i] {
			switch {
			case docCol < 0 && matchHeader(c, docHeaders):
				docCol = j
			case nameCol < 0 && matchHeader(c, nameHeaders):
				nameCol = j
			}
		}
		if nameCol >= 0 && docCol >= 0 {
			return i, nameCol, docCol, true
		}
	}
	return 0, 0, 0, false
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func looksLikeDocument(s string) bool {
	d := digitCount(s)
	return d == 11 || d == 14
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func extract(cells [][]string) ([]Row, error) {
	if len(cells) == 0 {
		return nil, ErrEmpty
	}
	start, nameCol, docCol := 0, 0, 1
	if hdr, n, d, ok := findHeader(cells); ok {
		start, nameCol, docCol = hdr+1, n, d
	} else if looksLikeDocument(cell(cells[0], 0)) && !looksLikeDocument(cell(cells[0], 1)) {
		nameCol, docCol = 1, 0
	}

	var out []Row
	for i := start; i < len(cells); i++ {
		name, doc := cell(cells[i], nameCol), cell(cells[i], docCol)
		if name == "" && doc == "" {
			continue
		}
		if len(out) == MaxRows {
			return nil, ErrTooManyRows
		}
		out = append(out, Row{Line: i + 1, Name: name, Document: doc})
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}
