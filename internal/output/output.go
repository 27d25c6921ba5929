package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"expograb/internal/contact"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrorMarker fills the contact cells of companies whose page could not be
// fetched, so they stand apart from companies without contacts.
const ErrorMarker = "ОШИБКА"

// E164Column is appended to the header when normalized phones are written.
const E164Column = "Телефон E.164"

// Header is the column layout of every export.
var Header = []string{"Ссылка", "Название", "Сайт", "Телефон", "Email"}

// Record is one exported company.
type Record struct {
	Link      string `json:"link"`
	Name      string `json:"name"`
	Website   string `json:"website"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	PhoneE164 string `json:"phone_e164,omitempty"`
	Failed    bool   `json:"failed,omitempty"`
}

// NewRecord pairs an extraction result with the company it belongs to.
func NewRecord(link, name string, r contact.Result) Record {
	return Record{
		Link:    link,
		Name:    name,
		Website: r.Website,
		Phone:   r.Phone,
		Email:   r.Email,
	}
}

// ErrorRecord marks a company whose page failed to load.
func ErrorRecord(link, name string) Record {
	return Record{
		Link:    link,
		Name:    name,
		Website: ErrorMarker,
		Phone:   ErrorMarker,
		Email:   ErrorMarker,
		Failed:  true,
	}
}

// Row returns the cells of r in Header order.
func (r Record) Row(withE164 bool) []string {
	row := []string{r.Link, r.Name, r.Website, r.Phone, r.Email}
	if withE164 {
		row = append(row, r.PhoneE164)
	}
	return row
}

// Columns returns the header, with the E.164 column when requested.
func Columns(withE164 bool) []string {
	cols := append([]string(nil), Header...)
	if withE164 {
		cols = append(cols, E164Column)
	}
	return cols
}

// Encoding is the character set of CSV files.
type Encoding string

const (
	Windows1251 Encoding = "win1251"
	UTF8        Encoding = "utf-8"
)

// ParseEncoding accepts the usual spellings of both encodings.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "win1251", "windows-1251", "cp1251":
		return Windows1251, nil
	case "utf-8", "utf8":
		return UTF8, nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", s)
	}
}

// CSVOptions controls WriteCSV.
type CSVOptions struct {
	Encoding Encoding
	WithE164 bool
}

const utf8BOM = "\ufeff"

// WriteCSV writes records as semicolon separated values. Windows-1251
// output replaces characters the code page cannot hold.
func WriteCSV(w io.Writer, records []Record, opts CSVOptions) (err error) {
	switch opts.Encoding {
	case UTF8:
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	case Windows1251, "":
		tw := transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.Windows1251.NewEncoder()))
		defer func() {
			if cerr := tw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to flush encoder: %w", cerr)
			}
		}()
		w = tw
	default:
		return fmt.Errorf("unsupported encoding: %s", opts.Encoding)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Columns(opts.WithE164)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row(opts.WithE164)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ReadCSV reads a file produced by WriteCSV.
func ReadCSV(r io.Reader, enc Encoding) ([]Record, error) {
	switch enc {
	case Windows1251, "":
		r = transform.NewReader(r, charmap.Windows1251.NewDecoder())
	case UTF8:
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", enc)
	}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	var records []Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.TrimPrefix(row[0], utf8BOM) == Header[0] {
			continue
		}
		if len(row) < len(Header) {
			continue
		}
		rec := Record{
			Link:    strings.TrimPrefix(row[0], utf8BOM),
			Name:    row[1],
			Website: row[2],
			Phone:   row[3],
			Email:   row[4],
		}
		if len(row) > len(Header) {
			rec.PhoneE164 = row[len(Header)]
		}
		rec.Failed = rec.Website == ErrorMarker || rec.Phone == ErrorMarker || rec.Email == ErrorMarker
		records = append(records, rec)
	}
	return records, nil
}

// ReadCSVFile reads path, returning no records when it does not exist.
func ReadCSVFile(path string, enc Encoding) ([]Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, enc)
}

// Done returns the links of records that need no refetch.
func Done(records []Record) map[string]bool {
	done := make(map[string]bool, len(records))
	for _, r := range records {
		if !r.Failed {
			done[r.Link] = true
		}
	}
	return done
}

// Merge keeps the successful records of a previous run and appends the new
// ones. A new record replaces a failed earlier one for the same link.
func Merge(prev, next []Record) []Record {
	redone := make(map[string]bool, len(next))
	for _, r := range next {
		redone[r.Link] = true
	}

	out := make([]Record, 0, len(prev)+len(next))
	for _, r := range prev {
		if r.Failed && redone[r.Link] {
			continue
		}
		out = append(out, r)
	}
	return append(out, next...)
}

// CSVString renders records as a CSV document in the given encoding.
func CSVString(records []Record, opts CSVOptions) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}
