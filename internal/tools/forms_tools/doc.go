// Package forms_tools provides MCP (Model Context Protocol) tools for Google Forms operations.
//
// This package exposes Forms functionality to MCP clients (like AI assistants) through
// tools that create forms and inspect their metadata and responses.
//
// Available tools:
//   - create_form: Create a new form with a title and optional description
//   - get_form: Get metadata for one or more forms (supports batch form IDs)
//   - list_form_responses: List submitted responses for a form
//
// All tools support multi-account functionality through an optional 'account' parameter,
// allowing management of multiple Google accounts simultaneously.
//
// Example tool usage:
//
//	create_form({
//	  title: "Workshop Feedback",
//	  description: "Tell us how the workshop went"
//	})
//
//	get_form({
//	  form_id: ["1FAIpQLSf...", "1FAIpQLSg..."]
//	})
package forms_tools
