package google

// DefaultOAuthScopes lists every Google scope the server needs. A single
// consent covers all tools, so a token minted once works for:
//   - Google Sheets: full spreadsheet access (read and write)
//   - Google Forms: create and edit form bodies
//   - Google Drive: read-only (used to discover spreadsheets)
var DefaultOAuthScopes = []string{
	// OpenID Connect, needed to identify the user
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Sheets scope
	"https://www.googleapis.com/auth/spreadsheets",

	// Google Forms scope
	"https://www.googleapis.com/auth/forms.body",

	// Google Drive scope (spreadsheet discovery only)
	"https://www.googleapis.com/auth/drive.readonly",
}
