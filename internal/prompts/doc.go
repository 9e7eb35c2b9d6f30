// Package prompts registers the static prompt templates exposed by the
// server: analyze_sheet_data, create_report_template, and form_to_sheet.
// Each prompt produces a single fixed user message guiding a spreadsheet
// analysis, report, or data collection workflow.
package prompts
