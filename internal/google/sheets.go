package google

import (
	"context"
	"fmt"
	"os"
	"time"

	"yoyaku/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// JournalService appends created bookings to an ops spreadsheet. The journal
// is write-behind and never gates booking success.
type JournalService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewJournalService(credentialsFile, credentialsJSON, spreadsheetID, sheetName string) (*JournalService, error) {
	ctx := context.Background()

	raw := []byte(credentialsJSON)
	if len(raw) == 0 {
		var err error
		raw, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %v", err)
		}
	}

	jwtConfig, err := google.JWTConfigFromJSON(raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := jwtConfig.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &JournalService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendBooking добавляет строку журнала для созданной брони
func (s *JournalService) AppendBooking(ctx context.Context, booking *models.Booking) error {
	row := []interface{}{
		booking.ID,
		booking.ClientName,
		booking.Start.Format(time.RFC3339),
		booking.End.Format(time.RFC3339),
		booking.Summary,
		booking.Location,
		booking.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	rangeData := s.sheetName + "!A:A"
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}
