// Package sheets provides a client for the Google Sheets API.
//
// Supported operations:
//   - Reading, writing, appending and clearing cell ranges (A1 notation)
//   - Creating spreadsheets
//   - Retrieving spreadsheet metadata (title, sheets, URL)
//
// Each client instance is bound to a specific account and authenticates
// through a token source supplied at construction, so the same client works
// off local token files and tokens minted by the HTTP OAuth flow. Values
// are written with RAW input option so the API performs no interpretation
// of the cell contents.
//
//	ts := google.TokenSourceForProvider(ctx, provider, account)
//	client, err := sheets.NewClientWithTokenSource(ctx, ts, account)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	values, err := client.ReadRange(ctx, spreadsheetID, "Sheet1!A1:C10")
package sheets
