package service

import (
	"context"
	"errors"
	"testing"

	"hubln/internal/apperr"
)

type fakeArchiver struct {
	calls int
	err   error
}

func (a *fakeArchiver) Archive(ctx context.Context, data []byte, contentType, filename string) (string, error) {
	a.calls++
	if a.err != nil {
		return "", a.err
	}
	return "spreadsheets/7/" + filename, nil
}

const clientsCSV = "Nome;CPF/CNPJ\n" +
	"Maria da Silva;529.982.247-25\n" +
	"Empresa X;11.222.333/0001-81\n" +
	";\n" +
	"José;123\n"

func TestParseSpreadsheet(t *testing.T) {
	archive := &fakeArchiver{}
	svc := NewImportService(archive)

	res, err := svc.ParseSpreadsheet(context.Background(), 7, "clientes.csv", []byte(clientsCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Clients) != 2 {
		t.Fatalf("got %d valid clients, want 2: %+v", len(res.Clients), res.Clients)
	}
	if res.Clients[0].Name != "Maria da Silva" || res.Clients[0].Document != "52998224725" {
		t.Fatalf("unexpected first client: %+v", res.Clients[0])
	}
	if len(res.Invalid) != 1 || res.Invalid[0].Reason != "invalid document" {
		t.Fatalf("unexpected invalid rows: %+v", res.Invalid)
	}
	if archive.calls != 1 || res.ArchiveKey != "spreadsheets/7/clientes.csv" {
		t.Fatalf("archive calls = %d key = %q", archive.calls, res.ArchiveKey)
	}
}

func TestParseSpreadsheetArchiveIsOptional(t *testing.T) {
	failing := &fakeArchiver{err: errors.New("bucket unavailable")}
	res, err := NewImportService(failing).ParseSpreadsheet(context.Background(), 7, "clientes.csv", []byte(clientsCSV))
	if err != nil {
		t.Fatalf("archive failure must not fail the import: %v", err)
	}
	if res.ArchiveKey != "" || len(res.Clients) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = NewImportService(nil).ParseSpreadsheet(context.Background(), 7, "clientes.csv", []byte(clientsCSV))
	if err != nil || len(res.Clients) != 2 {
		t.Fatalf("no archiver: %+v %v", res, err)
	}
}

func TestParseSpreadsheetRejectsUnknownFormat(t *testing.T) {
	_, err := NewImportService(nil).ParseSpreadsheet(context.Background(), 7, "clientes.pdf", []byte("%PDF"))
	if apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("err = %v, want invalid input", err)
	}
}
