package ledger

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink appends ledger rows to a Google Sheet via a service account.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	appendRange   string
}

type SheetsConfig struct {
	ClientEmail   string
	PrivateKey    string // PEM, real newlines
	SpreadsheetID string
	AppendRange   string // defaults to "Sheet1!A:J"
}

func NewSheetsSink(ctx context.Context, cfg SheetsConfig) (*SheetsSink, error) {
	if cfg.ClientEmail == "" || cfg.PrivateKey == "" || cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets sink requires client email, private key and spreadsheet id")
	}
	appendRange := cfg.AppendRange
	if appendRange == "" {
		appendRange = "Sheet1!A:J"
	}

	conf := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsSink{svc: svc, spreadsheetID: cfg.SpreadsheetID, appendRange: appendRange}, nil
}

func (s *SheetsSink) Append(ctx context.Context, rec Record) error {
	vr := &sheets.ValueRange{Values: [][]any{rec.Row()}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.appendRange, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	return nil
}

// RowCount counts data rows in the first column of the sheet, excluding the
// header row. Used by the count cache's sheets backend.
func (s *SheetsSink) RowCount(ctx context.Context) (int, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, "Sheet1!A:A").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("sheets row count: %w", err)
	}
	n := len(resp.Values) - 1
	if n < 0 {
		n = 0
	}
	return n, nil
}
