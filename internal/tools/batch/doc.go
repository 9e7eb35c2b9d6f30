// Package batch provides helpers for MCP tools that accept one or many IDs
// in a single call, such as get_form.
//
// Tool arguments are normalized with ParseStringOrArray, executed per item
// with ProcessBatch, and rendered with FormatResults. Individual item
// failures are reported inside the aggregated result instead of failing the
// whole call.
package batch
