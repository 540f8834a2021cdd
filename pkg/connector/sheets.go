// pkg/connector/sheets.go
package connector

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/David-Botos/sheets-ingress/pkg/config"
)

// SheetsConnector wraps the Google Sheets and Drive services. Drive is needed
// to resolve a spreadsheet *title* to its document ID, since the sync
// configuration references documents by name rather than by ID.
type SheetsConnector struct {
	sheets *sheets.Service
	drive  *drive.Service
	logger *zap.Logger
}

// NewSheetsConnector authenticates with a service-account credential and
// creates the Sheets and Drive clients
func NewSheetsConnector(ctx context.Context, cfg *config.GoogleConfig) (*SheetsConnector, error) {
	logger := zap.L().Named("sheets-connector")

	creds, err := google.CredentialsFromJSON(
		ctx,
		cfg.CredentialsJSON,
		sheets.SpreadsheetsReadonlyScope,
		drive.DriveMetadataReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	sheetsService, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}

	driveService, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	logger.Info("Connected to Google Sheets")

	return &SheetsConnector{
		sheets: sheetsService,
		drive:  driveService,
		logger: logger,
	}, nil
}

// OpenByTitle resolves a spreadsheet title to its document ID via a Drive
// metadata query. The title must match exactly; when more than one document
// carries the same name the most recently modified one wins.
func (c *SheetsConnector) OpenByTitle(ctx context.Context, title string) (string, error) {
	query := fmt.Sprintf(
		"name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(title, "'", `\'`),
	)

	list, err := c.drive.Files.List().
		Q(query).
		OrderBy("modifiedTime desc").
		Fields("files(id, name)").
		PageSize(2).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive lookup for %q failed: %w", title, err)
	}

	if len(list.Files) == 0 {
		return "", fmt.Errorf("no spreadsheet named %q is visible to the service account", title)
	}

	if len(list.Files) > 1 {
		c.logger.Warn("Multiple spreadsheets share a title, using most recently modified",
			zap.String("title", title),
			zap.String("spreadsheetID", list.Files[0].Id))
	}

	return list.Files[0].Id, nil
}

// Records fetches every populated cell of a worksheet and converts the grid
// to field-name→value records: the first row is the header, data rows are
// padded with empty strings when shorter than the header.
func (c *SheetsConnector) Records(ctx context.Context, spreadsheetID, worksheet string) ([]string, []map[string]string, error) {
	area := "'" + strings.ReplaceAll(worksheet, "'", "''") + "'"

	response, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to retrieve data from worksheet %q: %w", worksheet, err)
	}

	if len(response.Values) == 0 {
		return nil, nil, nil
	}

	header := make([]string, 0, len(response.Values[0]))
	for _, cell := range response.Values[0] {
		header = append(header, strings.TrimSpace(cellString(cell)))
	}

	records := make([]map[string]string, 0, len(response.Values)-1)
	for _, row := range response.Values[1:] {
		record := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(row) {
				record[column] = cellString(row[i])
			} else {
				record[column] = ""
			}
		}
		records = append(records, record)
	}

	return header, records, nil
}

// cellString renders a spreadsheet cell value as a string
func cellString(cell interface{}) string {
	if cell == nil {
		return ""
	}
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", cell)
}
