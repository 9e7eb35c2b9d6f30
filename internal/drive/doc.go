// Package drive wraps the Google Drive API for spreadsheet discovery.
// It is deliberately read-only: the only Drive scope requested is
// drive.readonly, and the only operation exposed is listing files of
// the Sheets MIME type.
//
// Each Client is bound to one account and authenticates through a token
// source supplied at construction.
//
//	ts := google.TokenSourceForProvider(ctx, provider, account)
//	client, err := drive.NewClientWithTokenSource(ctx, ts, account)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sheets, _, err := client.ListSpreadsheets(ctx, &drive.ListOptions{MaxResults: 20})
package drive
