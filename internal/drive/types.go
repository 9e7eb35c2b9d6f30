package drive

import "time"

// FileInfo is the subset of Drive file metadata the tools surface.
type FileInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType,omitempty"`
	CreatedTime  time.Time `json:"createdTime"`
	ModifiedTime time.Time `json:"modifiedTime"`
	// WebViewLink opens the file in the matching Google editor.
	WebViewLink string `json:"webViewLink,omitempty"`
	Owners      []User `json:"owners,omitempty"`
}

// User identifies a Drive file owner.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// ListOptions narrows a spreadsheet listing.
type ListOptions struct {
	// NameContains keeps only files whose name contains the substring.
	NameContains string

	// MaxResults caps the page size, the Drive API allows at most 1000.
	MaxResults int

	// OrderBy is a Drive sort expression such as "modifiedTime desc".
	OrderBy string

	// PageToken resumes a listing from a previous page.
	PageToken string
}
