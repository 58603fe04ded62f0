package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"hubln/internal/apperr"
	"hubln/pkg/spreadsheet"
	"hubln/pkg/storage"
)

// InvalidRow is a spreadsheet line that could not become a client.
type InvalidRow struct {
	Line     int    `json:"line"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Reason   string `json:"reason"`
}

type ImportResult struct {
	Clients    []ClientData `json:"clients"`
	Invalid    []InvalidRow `json:"invalid"`
	ArchiveKey string       `json:"archive_key,omitempty"`
}

// ImportService turns an uploaded spreadsheet into client rows ready for
// CreateSubmission.
type ImportService struct {
	archive storage.Archiver
}

func NewImportService(archive storage.Archiver) *ImportService {
	return &ImportService{archive: archive}
}

func (s *ImportService) ParseSpreadsheet(ctx context.Context, userID uint, filename string, data []byte) (*ImportResult, error) {
	rows, err := spreadsheet.Parse(filename, data)
	if err != nil {
		switch {
		case errors.Is(err, spreadsheet.ErrUnsupportedFormat),
			errors.Is(err, spreadsheet.ErrEmpty),
			errors.Is(err, spreadsheet.ErrTooManyRows):
			return nil, apperr.Invalid(err.Error())
		}
		return nil, apperr.Wrap(apperr.InvalidInput, "InvalidSpreadsheet", "could not read the spreadsheet", err)
	}

	res := &ImportResult{Clients: make([]ClientData, 0, len(rows))}
	for _, r := range rows {
		c, ok := ClientData{Name: r.Name, Document: r.Document}.Normalize()
		if ok {
			res.Clients = append(res.Clients, c)
			continue
		}
		reason := "invalid document"
		if !ValidDocument(c.Document) && len([]rune(c.Name)) < 2 {
			reason = "invalid name and document"
		} else if ValidDocument(c.Document) {
			reason = "invalid name"
		}
		res.Invalid = append(res.Invalid, InvalidRow{Line: r.Line, Name: r.Name, Document: r.Document, Reason: reason})
	}

	if s.archive != nil {
		key, err := s.archive.Archive(ctx, data, http.DetectContentType(data), filename)
		if err != nil {
			slog.Warn("spreadsheet archive failed", "user_id", userID, "error", err)
		} else {
			res.ArchiveKey = key
		}
	}
	slog.Info("spreadsheet parsed", "user_id", userID, "valid", len(res.Clients), "invalid", len(res.Invalid))
	return res, nil
}
