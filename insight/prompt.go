package insight

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/schemalab/engine"
	"github.com/c360studio/schemalab/schema"
)

// maxPromptRows caps how many result rows are embedded in the prompt.
const maxPromptRows = 25

const systemPrompt = "You are a business intelligence expert specializing in graph data analysis."

// buildInsightMessages renders the collaborator's three inputs into a
// chat exchange asking for actionable analysis.
func buildInsightMessages(s *schema.Schema, queryText string, result *engine.Result) []Message {
	var b strings.Builder

	b.WriteString("You are analyzing a knowledge graph sandbox session. ")
	b.WriteString("Review the schema, the query that was executed, and its results, then provide actionable insights.\n\n")

	b.WriteString("**Graph Schema:**\n")
	b.WriteString(renderSchema(s))
	b.WriteString("\n**Query Executed:**\n")
	b.WriteString(queryText)
	b.WriteString("\n\n**Query Results:**\n")
	b.WriteString(renderResult(result))

	b.WriteString("\n**Task:** Provide 3-5 actionable business insights based on this data. Focus on:\n")
	b.WriteString("1. Patterns and trends in the data\n")
	b.WriteString("2. Potential business opportunities\n")
	b.WriteString("3. Risk indicators or areas of concern\n")
	b.WriteString("4. Recommendations for action\n")
	b.WriteString("5. Questions that could be explored further\n\n")
	b.WriteString("Format your response as a structured analysis with clear sections.\n")

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// renderSchema serializes the schema record back to its text form.
func renderSchema(s *schema.Schema) string {
	if s == nil {
		return "(no schema declared)\n"
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Sprintf("(unrenderable schema: %v)\n", err)
	}
	return string(data)
}

// renderResult formats the tabular result as pipe-separated rows.
func renderResult(result *engine.Result) string {
	if result == nil || result.Len() == 0 {
		return "(no rows)\n"
	}

	var b strings.Builder
	b.WriteString(strings.Join(result.Columns, " | "))
	b.WriteString("\n")

	rows := result.Len()
	if rows > maxPromptRows {
		rows = maxPromptRows
	}

	for i := range rows {
		cells := result.Cells(i)
		parts := make([]string, len(cells))
		for j, cell := range cells {
			parts[j] = fmt.Sprintf("%v", cell)
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n")
	}

	if result.Len() > maxPromptRows {
		fmt.Fprintf(&b, "... and %d more rows\n", result.Len()-maxPromptRows)
	}

	return b.String()
}
