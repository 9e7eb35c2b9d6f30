package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterPrompts registers the static prompt templates with the MCP server
func RegisterPrompts(s *mcpserver.MCPServer) error {
	analyzePrompt := mcp.NewPrompt("analyze_sheet_data",
		mcp.WithPromptDescription("Analyze data from a Google Sheet with comprehensive insights"),
	)
	s.AddPrompt(analyzePrompt, staticPromptHandler(
		"Analyze data from a Google Sheet with comprehensive insights",
		analyzeSheetDataText,
	))

	reportPrompt := mcp.NewPrompt("create_report_template",
		mcp.WithPromptDescription("Create a professional report document in the canvas"),
	)
	s.AddPrompt(reportPrompt, staticPromptHandler(
		"Create a professional report document in the canvas",
		createReportTemplateText,
	))

	formToSheetPrompt := mcp.NewPrompt("form_to_sheet",
		mcp.WithPromptDescription("Create a Google Form and spreadsheet workflow for data collection"),
	)
	s.AddPrompt(formToSheetPrompt, staticPromptHandler(
		"Create a Google Form and spreadsheet workflow for data collection",
		formToSheetText,
	))

	return nil
}

// staticPromptHandler returns a handler that always produces the same single
// user message
func staticPromptHandler(description, text string) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	}
}

const analyzeSheetDataText = `I need help analyzing data from a Google Sheet. Please follow this workflow:

1. **Data Retrieval & Overview**
   - Ask me for the spreadsheet name and range (or help me list my spreadsheets if needed), unless the user has already retrieved a spreadsheet
   - Read the sheet data using the read_sheet tool
   - Provide a high-level summary:
     * Total number of rows and columns
     * Column headers/names
     * Date range (if applicable)
     * Brief description of what type of data this appears to be

2. **Data Structure Analysis**
   - Identify data types in each column (text, numeric, dates, categorical, etc.)
   - Note which columns contain responses vs. metadata
   - Check for missing, empty, or inconsistent values
   - Identify any obvious patterns in data organization

3. **Quantitative Analysis** (where applicable)
   - Calculate relevant statistics:
     * For numeric columns: averages, ranges (min/max), totals
     * For categorical data: frequency distributions, most common values
     * For rating scales: score distributions and averages
   - Identify any outliers or unusual values

4. **Qualitative Insights** (where applicable)
   - Summarize themes in text responses
   - Identify common keywords or topics
   - Note any particularly interesting or concerning comments
   - Highlight consensus vs. divergent opinions

5. **Key Findings & Recommendations**
   - Summarize 3-5 most important insights from the data
   - Flag any data quality issues or anomalies
   - Suggest improvements (data cleaning, additional fields, validation rules)
   - Recommend next steps for analysis or action
   - Propose visualization options that would make the data clearer

Please present findings in a clear, scannable format with specific examples and numbers from the actual data.`

const createReportTemplateText = `Help me create a professional report document with the following structure. Please create this as a well-formatted markdown document in the canvas:

1. **Report Header**
   - Report title
   - Company name (Lonely Octopus)
   - Report period/date range
   - Date generated

2. **Executive Summary**
   - Brief overview of key findings (2-3 paragraphs)
   - Highlight the most critical insights
   - Bottom-line recommendation or conclusion

3. **Key Metrics Dashboard**
   - Create a clean table with columns: Metric | Value | Change | Status
   - Include 5-8 relevant metrics with placeholder values
   - Add brief context notes below the table

4. **Detailed Analysis**
   - Break down findings into logical sections
   - Use clear headers for each topic area
   - Include supporting data and evidence
   - Present information in scannable format

5. **Findings & Recommendations**
   - **Key Findings**: List 3-5 most important discoveries
   - **Recommendations**: Specific, actionable suggestions
   - **Action Items**: Table with columns for Item, Owner, Due Date, Priority

6. **Appendix/Additional Notes**
   - Methodology or data sources (if applicable)
   - Assumptions made
   - Areas for further investigation
   - Additional context or supporting information

Please format the report with:
- Clear hierarchy using markdown headers
- Professional tables for data presentation
- Bold text for emphasis on key points
- Appropriate spacing for readability
- Placeholder content that can be easily customized`

const formToSheetText = `Help me set up a complete data collection workflow using Google Forms and Sheets:

1. **Understand Requirements**
   - Ask me what type of data I want to collect
   - Ask about the purpose (survey, registration, feedback, etc.)
   - Confirm the key fields/questions needed

2. **Create Google Form**
   - Use create_form tool with an appropriate title and description
   - Provide the form URL for editing
   - Suggest question types for each field (short answer, multiple choice, etc.)

3. **Create Response Spreadsheet**
   - Create a new spreadsheet with create_spreadsheet tool
   - Name it to match the form (e.g., "Form Name - Responses")
   - Set up the first row with column headers matching the form questions
   - Add a "Timestamp" column as the first column

4. **Integration Instructions**
   - Provide step-by-step instructions to link the form to the spreadsheet:
     * Open the Form in edit mode
     * Click "Responses" tab
     * Click the green Sheets icon
     * Select "Create a new spreadsheet" or link to existing
   - Note: This step requires manual action in the Google Forms interface

5. **Setup Recommendations**
   - Suggest form settings (collect email, limit to 1 response, etc.)
   - Recommend data validation rules
   - Propose notification settings for new responses
   - Suggest basic formulas or formatting for the response sheet

6. **Provide Summary**
   - Form URL for editing and sharing
   - Spreadsheet URL for viewing responses
   - Quick reference guide for managing the workflow

Please provide all URLs and IDs clearly formatted for easy access.`
