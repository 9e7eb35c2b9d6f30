// Package common provides shared helpers for the Sheets, Forms, and Drive
// tool packages: account resolution from tool arguments or the OAuth context,
// and handler wrappers that record metrics and audit logs per invocation.
package common
