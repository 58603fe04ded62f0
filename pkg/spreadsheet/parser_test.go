package spreadsheet

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSVWithHeader(t *testing.T) {
	data := []byte("\xef\xbb\xbfDocumento;Nome do Cliente\n123.456.789-09;Ana Souza\n;\n12.345.678/0001-95;Empresa X\n")
	rows, err := Parse("clientes.csv", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Name != "Ana Souza" || rows[0].Document != "123.456.789-09" || rows[0].Line != 2 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Line != 4 {
		t.Fatalf("expected line 4, got %d", rows[1].Line)
	}
}

func TestParseCSVWithoutHeaderSwapsColumns(t *testing.T) {
	rows, err := Parse("list.csv", []byte("12345678909,Bruno Lima\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0].Name != "Bruno Lima" || rows[0].Document != "12345678909" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]interface{}{"Nome", "CPF"})
	_ = f.SetSheetRow(sheet, "A2", &[]interface{}{"Carla Dias", "98765432100"})
	_ = f.SetSheetRow(sheet, "A3", &[]interface{}{"Davi Rocha", "11122233344"})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	rows, err := Parse("upload.XLSX", buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 || rows[1].Name != "Davi Rocha" || rows[1].Document != "11122233344" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("x.pdf", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Parse("x.csv", []byte("Nome,CPF\n")); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}
