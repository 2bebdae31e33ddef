package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/schemalab/engine"
	"github.com/c360studio/schemalab/graph"
	"github.com/c360studio/schemalab/query"
)

// NATS subjects served by the schema workbench service.
const (
	SubjectCompile = "schemalab.schema.compile"
	SubjectAnalyze = "schemalab.schema.analyze"
	SubjectQuery   = "schemalab.query.execute"
	SubjectInsight = "schemalab.insight.generate"
	SubjectHealth  = "schemalab.service.health"
)

// CompileRequest asks the service to compile schema text and make it the
// active schema.
type CompileRequest struct {
	RequestID  string `json:"request_id"`
	SchemaText string `json:"schema_text"`
}

// CompileResponse reports the outcome of a compile request.
type CompileResponse struct {
	RequestID string   `json:"request_id"`
	Success   bool     `json:"success"`
	Error     string   `json:"error,omitempty"`
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	Warnings  []string `json:"warnings,omitempty"`
}

// AnalyzeRequest asks for structural stats of the active schema graph.
type AnalyzeRequest struct {
	RequestID string `json:"request_id"`
}

// AnalyzeResponse carries connectivity and centrality stats.
type AnalyzeResponse struct {
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
	Stats     graph.Stats `json:"stats"`
	Warnings  []string    `json:"warnings,omitempty"`
}

// QueryRequest asks the service to parse and execute a natural-language
// query against the active dataset.
type QueryRequest struct {
	RequestID string `json:"request_id"`
	Query     string `json:"query"`
}

// QueryResponse carries the parsed intent and the tabular result.
type QueryResponse struct {
	RequestID string        `json:"request_id"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Intent    query.Intent  `json:"intent"`
	Columns   []string      `json:"columns,omitempty"`
	Rows      []engine.Row  `json:"rows,omitempty"`
	QueryTime time.Duration `json:"query_time"`
}

// InsightRequest asks for LLM commentary on the most recent query result.
type InsightRequest struct {
	RequestID string `json:"request_id"`
}

// InsightResponse carries generated insight text.
type InsightResponse struct {
	RequestID string `json:"request_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Insights  string `json:"insights,omitempty"`
}

// HealthResponse reports service liveness and counters.
type HealthResponse struct {
	RequestID        string        `json:"request_id"`
	Healthy          bool          `json:"healthy"`
	Uptime           time.Duration `json:"uptime"`
	SchemaLoaded     bool          `json:"schema_loaded"`
	QueriesProcessed int64         `json:"queries_processed"`
}

// ensureRequestID fills in a request ID when the caller did not provide one.
func ensureRequestID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}
