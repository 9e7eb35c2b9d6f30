// Package forms provides a client for the Google Forms API.
//
// Supported operations:
//   - Creating forms (title plus optional description)
//   - Retrieving form metadata
//   - Listing form responses
//
// The Forms API only accepts a title at creation time, so the description
// is applied with a follow-up batchUpdate call. Each client instance is
// bound to a specific account and authenticates through a token source
// supplied at construction; the only Forms scope requested is forms.body.
package forms
