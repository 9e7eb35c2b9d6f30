package sheets

// SpreadsheetInfo represents metadata about a spreadsheet
type SpreadsheetInfo struct {
	// SpreadsheetID is the unique identifier for the spreadsheet
	SpreadsheetID string `json:"spreadsheetId"`

	// Title is the spreadsheet title
	Title string `json:"title"`

	// SpreadsheetURL is the link for opening the spreadsheet in the Sheets editor
	SpreadsheetURL string `json:"spreadsheetUrl"`

	// Sheets are the individual sheets (tabs) of the spreadsheet
	Sheets []SheetInfo `json:"sheets,omitempty"`
}

// SheetInfo represents one sheet (tab) within a spreadsheet
type SheetInfo struct {
	// SheetID is the numeric sheet identifier
	SheetID int64 `json:"sheetId"`

	// Title is the sheet title
	Title string `json:"title"`

	// Index is the position of the sheet within the spreadsheet
	Index int64 `json:"index"`

	// RowCount is the number of rows in the sheet grid
	RowCount int64 `json:"rowCount,omitempty"`

	// ColumnCount is the number of columns in the sheet grid
	ColumnCount int64 `json:"columnCount,omitempty"`
}

// UpdateResult describes the outcome of a write operation
type UpdateResult struct {
	// UpdatedRange is the range that was actually written, in A1 notation
	UpdatedRange string `json:"updatedRange"`

	// UpdatedRows is the number of rows affected
	UpdatedRows int64 `json:"updatedRows"`

	// UpdatedColumns is the number of columns affected
	UpdatedColumns int64 `json:"updatedColumns"`

	// UpdatedCells is the number of cells affected
	UpdatedCells int64 `json:"updatedCells"`
}

// ClearResult describes the outcome of a clear operation
type ClearResult struct {
	// ClearedRange is the range that was cleared, in A1 notation
	ClearedRange string `json:"clearedRange"`
}
