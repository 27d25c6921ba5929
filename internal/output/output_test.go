package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expograb/internal/contact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var sample = []Record{
	NewRecord("https://catalog.agravia.org/company/1", "ООО «Агро»", contact.Result{
		Website: "https://agro.ru",
		Phone:   "+7 (495) 123-45-67",
		Email:   "info@agro.ru",
	}),
	ErrorRecord("https://catalog.agravia.org/company/2", "АО Поле; и Ко"),
}

func TestWriteCSV_Windows1251(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample, CSVOptions{Encoding: Windows1251}))

	decoded, err := charmap.Windows1251.NewDecoder().String(buf.String())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(decoded, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Ссылка;Название;Сайт;Телефон;Email", lines[0])
	assert.Equal(t, "https://catalog.agravia.org/company/1;ООО «Агро»;https://agro.ru;+7 (495) 123-45-67;info@agro.ru", lines[1])
	assert.Equal(t, `https://catalog.agravia.org/company/2;"АО Поле; и Ко";ОШИБКА;ОШИБКА;ОШИБКА`, lines[2])
}

func TestWriteCSV_Unencodable(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecord("https://x.ru/company/3", "Кофе ☕ 咖啡", contact.Result{})
	require.NoError(t, WriteCSV(&buf, []Record{rec}, CSVOptions{}))

	records, err := ReadCSV(&buf, Windows1251)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, strings.HasPrefix(records[0].Name, "Кофе "))
	assert.NotContains(t, records[0].Name, "☕")
}

func TestCSV_RoundTrip(t *testing.T) {
	for _, enc := range []Encoding{Windows1251, UTF8} {
		t.Run(string(enc), func(t *testing.T) {
			withPhone := append([]Record(nil), sample...)
			withPhone[0].PhoneE164 = "+74951234567"

			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, withPhone, CSVOptions{Encoding: enc, WithE164: true}))

			records, err := ReadCSV(&buf, enc)
			require.NoError(t, err)
			assert.Equal(t, withPhone, records)
		})
	}
}

func TestReadCSVFile_Missing(t *testing.T) {
	records, err := ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"), Windows1251)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	data, err := CSVString(sample, CSVOptions{Encoding: Windows1251})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	records, err := ReadCSVFile(path, Windows1251)
	require.NoError(t, err)
	assert.Equal(t, sample, records)
}

func TestDoneAndMerge(t *testing.T) {
	done := Done(sample)
	assert.True(t, done["https://catalog.agravia.org/company/1"])
	assert.False(t, done["https://catalog.agravia.org/company/2"])

	retried := NewRecord("https://catalog.agravia.org/company/2", "АО Поле; и Ко", contact.Result{Phone: "8 800 200-00-00"})
	fresh := NewRecord("https://catalog.agravia.org/company/3", "ИП Иванов", contact.Result{})

	merged := Merge(sample, []Record{retried, fresh})
	assert.Equal(t, []Record{sample[0], retried, fresh}, merged)
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"": Windows1251, "CP1251": Windows1251, "windows-1251": Windows1251, "UTF8": UTF8} {
		got, err := ParseEncoding(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEncoding("koi8-r")
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	data, err := XLSXBytes(sample, false)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, sample[0].Row(false), rows[1])
	assert.Equal(t, ErrorMarker, rows[2][2])
}
