package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
)

// DefaultRange is used when a read does not specify a range: the whole
// first sheet under its conventional name.
const DefaultRange = "Sheet1"

// Client wraps the Google Sheets API service
type Client struct {
	service *sheets.Service
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientWithService creates a client around an existing Sheets service.
// Used by the HTTP transport where the authenticated client comes from the
// OAuth token store rather than a token file.
func NewClientWithService(service *sheets.Service, account string) *Client {
	return &Client{service: service, account: account}
}

// NewClientWithTokenSource builds a client whose requests authenticate
// through the given token source, regardless of where its tokens come from.
func NewClientWithTokenSource(ctx context.Context, ts oauth2.TokenSource, account string) (*Client, error) {
	httpClient := google.HTTPClientFromTokenSource(ctx, ts)
	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return NewClientWithService(service, account), nil
}

// ReadRange reads cell values from the given A1-notation range.
// An empty range reads the whole first sheet. The returned slice contains
// one row per entry; trailing empty cells are omitted by the API.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, rangeName string) ([][]interface{}, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if rangeName == "" {
		rangeName = DefaultRange
	}

	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, rangeName).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rangeName, err)
	}

	return resp.Values, nil
}

// WriteRange writes cell values into the given A1-notation range using RAW
// input, so the API stores the values without interpretation.
func (c *Client) WriteRange(ctx context.Context, spreadsheetID, rangeName string, values [][]interface{}) (*UpdateResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if rangeName == "" {
		return nil, fmt.Errorf("rangeName is required")
	}

	body := &sheets.ValueRange{Values: values}

	resp, err := c.service.Spreadsheets.Values.Update(spreadsheetID, rangeName, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to write range %s: %w", rangeName, err)
	}

	return &UpdateResult{
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}, nil
}

// AppendRange appends rows after the last row of the table that contains
// the given range, inserting new rows rather than overwriting.
func (c *Client) AppendRange(ctx context.Context, spreadsheetID, rangeName string, values [][]interface{}) (*UpdateResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if rangeName == "" {
		return nil, fmt.Errorf("rangeName is required")
	}

	body := &sheets.ValueRange{Values: values}

	resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, rangeName, body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to append to range %s: %w", rangeName, err)
	}

	result := &UpdateResult{}
	if resp.Updates != nil {
		result.UpdatedRange = resp.Updates.UpdatedRange
		result.UpdatedRows = resp.Updates.UpdatedRows
		result.UpdatedColumns = resp.Updates.UpdatedColumns
		result.UpdatedCells = resp.Updates.UpdatedCells
	}
	return result, nil
}

// ClearRange clears cell values from the given A1-notation range.
// Formatting and other sheet properties are left untouched.
func (c *Client) ClearRange(ctx context.Context, spreadsheetID, rangeName string) (*ClearResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if rangeName == "" {
		return nil, fmt.Errorf("rangeName is required")
	}

	resp, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, rangeName, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to clear range %s: %w", rangeName, err)
	}

	return &ClearResult{ClearedRange: resp.ClearedRange}, nil
}

// CreateSpreadsheet creates a new spreadsheet with the given title
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (*SpreadsheetInfo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: title,
		},
	}

	resp, err := c.service.Spreadsheets.Create(spreadsheet).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	return convertToSpreadsheetInfo(resp), nil
}

// GetSpreadsheetInfo retrieves metadata about a spreadsheet, including its
// individual sheets, without fetching any cell data.
func (c *Client) GetSpreadsheetInfo(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}

	resp, err := c.service.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId, spreadsheetUrl, properties.title, sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	return convertToSpreadsheetInfo(resp), nil
}

// convertToSpreadsheetInfo converts a Sheets API spreadsheet to our SpreadsheetInfo type
func convertToSpreadsheetInfo(s *sheets.Spreadsheet) *SpreadsheetInfo {
	info := &SpreadsheetInfo{
		SpreadsheetID:  s.SpreadsheetId,
		SpreadsheetURL: s.SpreadsheetUrl,
	}

	if s.Properties != nil {
		info.Title = s.Properties.Title
	}

	for _, sheet := range s.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		si := SheetInfo{
			SheetID: sheet.Properties.SheetId,
			Title:   sheet.Properties.Title,
			Index:   sheet.Properties.Index,
		}
		if grid := sheet.Properties.GridProperties; grid != nil {
			si.RowCount = grid.RowCount
			si.ColumnCount = grid.ColumnCount
		}
		info.Sheets = append(info.Sheets, si)
	}

	return info
}
