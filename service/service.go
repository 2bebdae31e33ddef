// Package service exposes the schema workbench over NATS request/reply.
// Callers compile schemas, run analysis, execute queries, and request
// insight generation by sending JSON messages on schemalab.* subjects.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/c360studio/schemalab/config"
	"github.com/c360studio/schemalab/dataset"
	"github.com/c360studio/schemalab/engine"
	"github.com/c360studio/schemalab/graph"
	"github.com/c360studio/schemalab/insight"
	"github.com/c360studio/schemalab/query"
	"github.com/c360studio/schemalab/schema"
)

// Insighter generates narrative commentary for a query result. It is
// satisfied by *insight.Client.
type Insighter interface {
	Generate(ctx context.Context, s *schema.Schema, queryText string, result *engine.Result) (string, error)
}

var _ Insighter = (*insight.Client)(nil)

// defaultInsightTimeout bounds insight generation when the config
// leaves Insight.Timeout unset.
const defaultInsightTimeout = 3 * time.Minute

// Service is the NATS-facing workbench component. It holds the active
// schema, its graph, and the dataset, and serves request/reply on the
// schemalab.* subjects.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger

	// NATS
	embeddedServer *server.Server
	conn           *nats.Conn
	subs           []*nats.Subscription

	// Active state
	mu        sync.RWMutex
	schema    *schema.Schema
	graph     *graph.Graph
	stats     graph.Stats
	warnings  []graph.Warning
	ds        *dataset.Dataset
	lastQuery string
	lastRes   *engine.Result

	insighter Insighter

	// Lifecycle
	running   bool
	startTime time.Time

	// Metrics
	queriesProcessed int64

	clock func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithInsighter sets the insight generator used for insight requests.
func WithInsighter(i Insighter) Option {
	return func(s *Service) {
		s.insighter = i
	}
}

// WithClock overrides the time source used for order-window queries.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// New creates a Service from config. The dataset is loaded from the
// configured fixture, or generated from the configured seed when no
// fixture is set.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Service{
		cfg:    cfg,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	ds, err := loadDataset(cfg)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	s.ds = ds

	return s, nil
}

func loadDataset(cfg *config.Config) (*dataset.Dataset, error) {
	if cfg.Dataset.Fixture != "" {
		return dataset.Load(cfg.Dataset.Fixture)
	}
	return dataset.Generate(dataset.GenerateConfig{
		Seed:      cfg.Dataset.Seed,
		Customers: cfg.Dataset.Customers,
		Products:  cfg.Dataset.Products,
		Orders:    cfg.Dataset.Orders,
	}), nil
}

// Start connects to NATS (embedded or external) and subscribes the
// request handlers. The initial schema comes from config, falling back
// to the built-in example.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("service already running")
	}

	if err := s.startNATS(); err != nil {
		return fmt.Errorf("start NATS: %w", err)
	}

	// Load the initial schema
	text := schema.DefaultText
	if s.cfg.Schema.Path != "" {
		loaded, err := schema.ReadFile(s.cfg.Schema.Path)
		if err != nil {
			return fmt.Errorf("load schema %s: %w", s.cfg.Schema.Path, err)
		}
		text = loaded
	}
	if err := s.setSchemaLocked(text); err != nil {
		return fmt.Errorf("compile initial schema: %w", err)
	}

	if err := s.subscribe(); err != nil {
		s.teardownNATS()
		return fmt.Errorf("subscribe: %w", err)
	}

	s.running = true
	s.startTime = time.Now()

	s.logger.Info("Workbench service started",
		"nodes", s.schema.NodeCount(),
		"edges", s.schema.EdgeCount(),
		"customers", len(s.ds.Customers),
		"orders", len(s.ds.Orders))

	return nil
}

func (s *Service) startNATS() error {
	if s.cfg.NATS.URL != "" && !s.cfg.NATS.Embedded {
		conn, err := nats.Connect(s.cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		s.conn = conn
		return nil
	}

	opts := &server.Options{
		Port:   -1, // Random available port
		NoLog:  true,
		NoSigs: true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		return fmt.Errorf("embedded NATS server failed to start")
	}
	s.embeddedServer = ns

	conn, err := nats.Connect(ns.ClientURL())
	if err != nil {
		ns.Shutdown()
		return fmt.Errorf("connect to embedded NATS: %w", err)
	}
	s.conn = conn

	return nil
}

func (s *Service) subscribe() error {
	handlers := map[string]nats.MsgHandler{
		SubjectCompile: s.handleCompile,
		SubjectAnalyze: s.handleAnalyze,
		SubjectQuery:   s.handleQuery,
		SubjectInsight: s.handleInsight,
		SubjectHealth:  s.handleHealth,
	}

	for subject, handler := range handlers {
		sub, err := s.conn.Subscribe(subject, handler)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

// ClientURL returns the URL clients should connect to. Useful when the
// server is embedded on a random port.
func (s *Service) ClientURL() string {
	if s.embeddedServer != nil {
		return s.embeddedServer.ClientURL()
	}
	return s.cfg.NATS.URL
}

// Stop drains subscriptions and shuts down the embedded server if one
// was started.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	queries := s.queriesProcessed
	s.mu.Unlock()

	// Teardown happens outside the state lock: Drain waits for in-flight
	// handlers, and handlers take the lock.
	s.teardownNATS()

	s.logger.Info("Workbench service stopped",
		"queries", queries)

	return nil
}

func (s *Service) teardownNATS() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil

	if s.conn != nil {
		_ = s.conn.Drain()
		s.conn.Close()
		s.conn = nil
	}
	if s.embeddedServer != nil {
		s.embeddedServer.Shutdown()
		s.embeddedServer.WaitForShutdown()
		s.embeddedServer = nil
	}
}

// setSchemaLocked compiles text, builds the graph, and installs both as
// the active state. Caller holds s.mu.
func (s *Service) setSchemaLocked(text string) error {
	compiled, err := schema.Compile(text)
	if err != nil {
		return err
	}

	g, warnings := graph.Build(compiled)
	s.schema = compiled
	s.graph = g
	s.stats = graph.Analyze(g)
	s.warnings = warnings

	for _, w := range warnings {
		s.logger.Warn("Schema graph warning", "warning", w.String())
	}
	return nil
}

// SetSchema compiles text and makes it the active schema.
func (s *Service) SetSchema(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setSchemaLocked(text)
}

func (s *Service) handleCompile(msg *nats.Msg) {
	var req CompileRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("Invalid compile request", "error", err)
		s.respond(msg, CompileResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}
	req.RequestID = ensureRequestID(req.RequestID)

	resp := CompileResponse{RequestID: req.RequestID}

	if err := s.SetSchema(req.SchemaText); err != nil {
		resp.Error = err.Error()
		s.respond(msg, resp)
		return
	}

	s.mu.RLock()
	resp.Success = true
	resp.NodeCount = s.schema.NodeCount()
	resp.EdgeCount = s.schema.EdgeCount()
	resp.Warnings = warningStrings(s.warnings)
	s.mu.RUnlock()

	s.respond(msg, resp)
}

func (s *Service) handleAnalyze(msg *nats.Msg) {
	var req AnalyzeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("Invalid analyze request", "error", err)
		s.respond(msg, AnalyzeResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}
	req.RequestID = ensureRequestID(req.RequestID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := AnalyzeResponse{RequestID: req.RequestID}
	if s.graph == nil {
		resp.Error = "no schema loaded"
		s.respond(msg, resp)
		return
	}

	resp.Success = true
	resp.Stats = s.stats
	resp.Warnings = warningStrings(s.warnings)
	s.respond(msg, resp)
}

func (s *Service) handleQuery(msg *nats.Msg) {
	var req QueryRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("Invalid query request", "error", err)
		s.respond(msg, QueryResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}
	req.RequestID = ensureRequestID(req.RequestID)

	start := time.Now()
	intent := query.Parse(req.Query)

	s.mu.Lock()
	s.queriesProcessed++
	ds := s.ds
	now := s.clock()
	s.mu.Unlock()

	resp := QueryResponse{RequestID: req.RequestID, Intent: intent}

	result, err := engine.Execute(intent, ds, now)
	if err != nil {
		resp.Error = err.Error()
		resp.QueryTime = time.Since(start)
		s.respond(msg, resp)
		return
	}

	s.mu.Lock()
	s.lastQuery = req.Query
	s.lastRes = result
	s.mu.Unlock()

	resp.Success = true
	resp.Columns = result.Columns
	resp.Rows = result.Rows
	resp.QueryTime = time.Since(start)

	s.logger.Debug("Query executed",
		"intent", intent.Kind,
		"rows", result.Len(),
		"duration", resp.QueryTime)

	s.respond(msg, resp)
}

func (s *Service) handleInsight(msg *nats.Msg) {
	var req InsightRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("Invalid insight request", "error", err)
		s.respond(msg, InsightResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}
	req.RequestID = ensureRequestID(req.RequestID)

	resp := InsightResponse{RequestID: req.RequestID}

	if s.insighter == nil {
		resp.Error = "no insight endpoints configured"
		s.respond(msg, resp)
		return
	}

	s.mu.RLock()
	sch := s.schema
	queryText := s.lastQuery
	result := s.lastRes
	s.mu.RUnlock()

	if result == nil {
		resp.Error = "no query result to analyze; execute a query first"
		s.respond(msg, resp)
		return
	}

	timeout := s.cfg.Insight.Timeout
	if timeout <= 0 {
		timeout = defaultInsightTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	text, err := s.insighter.Generate(ctx, sch, queryText, result)
	if err != nil {
		resp.Error = err.Error()
		resp.Insights = text
		s.respond(msg, resp)
		return
	}

	resp.Success = true
	resp.Insights = text
	s.respond(msg, resp)
}

func (s *Service) handleHealth(msg *nats.Msg) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.respond(msg, HealthResponse{
		RequestID:        ensureRequestID(""),
		Healthy:          s.running,
		Uptime:           time.Since(s.startTime),
		SchemaLoaded:     s.schema != nil,
		QueriesProcessed: s.queriesProcessed,
	})
}

func (s *Service) respond(msg *nats.Msg, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("Failed to respond", "subject", msg.Subject, "error", err)
	}
}

func warningStrings(warnings []graph.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}

// QueriesProcessed returns the number of queries served so far.
func (s *Service) QueriesProcessed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queriesProcessed
}
