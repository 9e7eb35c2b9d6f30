// Package google_tools registers the OAuth bootstrap tools for assistants
// running over stdio, where no browser callback server exists.
//
// The flow is manual: google_get_auth_url produces the consent URL, the
// user authorizes in a browser and pastes the resulting code back through
// google_save_auth_code. The saved token covers Sheets, Forms, and Drive
// and is refreshed automatically afterwards. Multiple Google accounts are
// supported through the optional account argument.
package google_tools
