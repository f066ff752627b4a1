// Package sheets mirrors accepted attendance records to a Google Sheets
// worksheet. The sink is best-effort: callers log failures and move on.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// MirrorRow is the flattened record appended to the worksheet, and the body of
// a queued mirror job.
type MirrorRow struct {
	Timestamp   time.Time `json:"timestamp"`
	RollNumber  string    `json:"roll_number"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Branch      string    `json:"branch"`
	Section     string    `json:"section"`
	PhoneNumber string    `json:"phone_number"`
	DeviceInfo  string    `json:"device_info"`
}

// values renders the row for the A:H range.
func (r MirrorRow) values() []interface{} {
	return []interface{}{
		r.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		r.RollNumber,
		r.FullName,
		r.Email,
		r.Branch,
		r.Section,
		r.PhoneNumber,
		r.DeviceInfo,
	}
}

// Logger appends and reads attendance rows on one worksheet.
type Logger struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewLogger builds a sheets client from a service account credentials file.
func NewLogger(ctx context.Context, credentialsFile, spreadsheetID, worksheet string) (*Logger, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets service init: %w", err)
	}
	return &Logger{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}, nil
}

// Append adds one attendance row to the worksheet.
func (l *Logger) Append(ctx context.Context, row MirrorRow) error {
	body := &sheets.ValueRange{Values: [][]interface{}{row.values()}}
	_, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, l.worksheet+"!A:H", body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	return nil
}

// Row is a record read back from the worksheet.
type Row struct {
	Timestamp   string `json:"timestamp"`
	RollNumber  string `json:"roll_number"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Branch      string `json:"branch"`
	Section     string `json:"section"`
	PhoneNumber string `json:"phone_number"`
	DeviceInfo  string `json:"device_info"`
}

// Records lists historical rows, optionally filtered to one day
// (date in YYYY-MM-DD). The header row is skipped.
func (l *Logger) Records(ctx context.Context, date string) ([]Row, error) {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, l.worksheet+"!A:H").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets read: %w", err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}

	var out []Row
	for _, raw := range resp.Values[1:] {
		row := parseRow(raw)
		if date != "" && !strings.HasPrefix(row.Timestamp, date) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func parseRow(raw []interface{}) Row {
	cell := func(i int) string {
		if i < len(raw) {
			if s, ok := raw[i].(string); ok {
				return s
			}
		}
		return ""
	}
	return Row{
		Timestamp:   cell(0),
		RollNumber:  cell(1),
		FullName:    cell(2),
		Email:       cell(3),
		Branch:      cell(4),
		Section:     cell(5),
		PhoneNumber: cell(6),
		DeviceInfo:  cell(7),
	}
}

// EnsureHeader writes the header row when the sheet is empty.
func (l *Logger) EnsureHeader(ctx context.Context) error {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, l.worksheet+"!A1:H1").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets read header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	header := &sheets.ValueRange{Values: [][]interface{}{{
		"Timestamp", "Roll Number", "Name", "Email", "Branch", "Section", "Phone", "Device Info",
	}}}
	_, err = l.svc.Spreadsheets.Values.
		Update(l.spreadsheetID, l.worksheet+"!A1:H1", header).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets write header: %w", err)
	}
	return nil
}
