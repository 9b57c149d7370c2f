package rowstore

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheets is a Backend backed by one worksheet of a Google spreadsheet.
// Rows start at A1 with no header; row position equals sheet row index.
// Calls are synchronous and bounded by the API client's own timeouts.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	sheetID       int64
}

// NewSheets connects to the given spreadsheet using a service account
// credentials file and resolves the worksheet by name.
func NewSheets(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*Sheets, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("sheets credentials file is required")
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	spreadsheet, err := svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet %s: %w", spreadsheetID, err)
	}

	var sheetID int64 = -1
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			sheetID = sh.Properties.SheetId
			break
		}
	}
	if sheetID < 0 {
		return nil, fmt.Errorf("worksheet %q not found in spreadsheet %s", sheetName, spreadsheetID)
	}

	return &Sheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		sheetID:       sheetID,
	}, nil
}

// AppendRow adds a row after the last non-empty row.
func (s *Sheets) AppendRow(row Row) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{rowToCells(row)}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return fmt.Errorf("appending sheet row: %w", err)
	}
	return nil
}

// AllRows returns every row of the worksheet in order.
func (s *Sheets) AllRows() ([]Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet rows: %w", err)
	}

	rows := make([]Row, 0, len(resp.Values))
	for _, cells := range resp.Values {
		row := make(Row, len(cells))
		for i, c := range cells {
			row[i] = fmt.Sprint(c)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpdateRow overwrites the row at the given zero-based position.
func (s *Sheets) UpdateRow(pos int, row Row) error {
	rng := fmt.Sprintf("%s!A%d", s.sheetName, pos+1)
	vr := &sheets.ValueRange{Values: [][]interface{}{rowToCells(row)}}
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("updating sheet row %d: %w", pos, err)
	}
	return nil
}

// DeleteRow removes the row at the given zero-based position.
func (s *Sheets) DeleteRow(pos int) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(pos),
					EndIndex:   int64(pos + 1),
				},
			},
		}},
	}
	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Do()
	if err != nil {
		return fmt.Errorf("deleting sheet row %d: %w", pos, err)
	}
	return nil
}

func rowToCells(row Row) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
