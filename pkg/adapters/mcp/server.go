package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/logging"
	"github.com/aretw0/cacheflow/pkg/codec"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/lifecycle"
)

const (
	WorkflowURI    = "cacheflow://workflow"
	ConnectionsURI = "cacheflow://connections"
)

// EditResponse reports whether an edit changed the canvas.
type EditResponse struct {
	Applied  bool   `json:"applied" jsonschema_description:"False when the edit was a no-op"`
	Revision uint64 `json:"revision" jsonschema_description:"Canvas revision after the edit"`
	StepID   string `json:"step_id,omitempty" jsonschema_description:"Identifier of the created step"`
}

// LayoutResponse lists the ports touched by a layout report or unmount.
type LayoutResponse struct {
	Set        []string `json:"set"`
	Unset      []string `json:"unset"`
	Suppressed int      `json:"suppressed"`
	Revision   uint64   `json:"revision"`
}

// ConnectionsResponse is the drawable connection set of the canvas.
type ConnectionsResponse struct {
	Connections []domain.ConnectionView `json:"connections"`
	Revision    uint64                  `json:"revision"`
}

type stepArgs struct {
	StepID string `json:"step_id"`
}

type addStepArgs struct {
	Type string   `json:"type"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

type moveStepArgs struct {
	StepID string  `json:"step_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type outputsArgs struct {
	StepID  string   `json:"step_id"`
	Outputs []string `json:"outputs"`
}

type parameterArgs struct {
	StepID string `json:"step_id"`
	Input  string `json:"input"`
	Value  string `json:"value"`
}

type connectionArgs struct {
	FromStep   string `json:"from_step"`
	FromOutput string `json:"from_output"`
	ToStep     string `json:"to_step"`
	ToInput    string `json:"to_input"`
}

type layoutArgs struct {
	StepID string `json:"step_id"`
	Layout string `json:"layout"`
}

// Server exposes a canvas as an MCP server.
type Server struct {
	canvas    *cacheflow.Canvas
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the SSE transport.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(canvas *cacheflow.Canvas, opts ...Option) *Server {
	s := &Server{
		canvas: canvas,
		mcpServer: server.NewMCPServer("cacheflow-mcp", strings.TrimSpace(cacheflow.Version),
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, true),
		),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("add_step",
		mcp.WithDescription("Add a step running the given component. Without a position the step is placed at the origin."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Component type, e.g. data or optimize")),
		mcp.WithNumber("x", mcp.Description("Horizontal canvas position")),
		mcp.WithNumber("y", mcp.Description("Vertical canvas position")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddStep))

	s.mcpServer.AddTool(mcp.NewTool("remove_step",
		mcp.WithDescription("Remove a step. Connections that referenced it are left dangling."),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Step to remove")),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveStep))

	s.mcpServer.AddTool(mcp.NewTool("move_step",
		mcp.WithDescription("Move a step to a new canvas position."),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Step to move")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Horizontal canvas position")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Vertical canvas position")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleMoveStep))

	s.mcpServer.AddTool(mcp.NewTool("set_outputs",
		mcp.WithDescription("Replace the declared outputs of a step."),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Step to update")),
		mcp.WithArray("outputs", mcp.Required(), mcp.WithStringItems(), mcp.Description("Output names in slot order")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetOutputs))

	s.mcpServer.AddTool(mcp.NewTool("set_input_parameter",
		mcp.WithDescription("Set an input to a constant value, replacing any connections it had."),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Step to update")),
		mcp.WithString("input", mcp.Required(), mcp.Description("Input name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Constant value")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetInputParameter))

	s.mcpServer.AddTool(mcp.NewTool("set_connection",
		mcp.WithDescription("Connect an output of one step to an input of another."),
		mcp.WithString("from_step", mcp.Required(), mcp.Description("Source step")),
		mcp.WithString("from_output", mcp.Required(), mcp.Description("Source output name")),
		mcp.WithString("to_step", mcp.Required(), mcp.Description("Destination step")),
		mcp.WithString("to_input", mcp.Required(), mcp.Description("Destination input name")),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetConnection))

	s.mcpServer.AddTool(mcp.NewTool("remove_connection",
		mcp.WithDescription("Remove a connection between two ports."),
		mcp.WithString("from_step", mcp.Required(), mcp.Description("Source step")),
		mcp.WithString("from_output", mcp.Required(), mcp.Description("Source output name")),
		mcp.WithString("to_step", mcp.Required(), mcp.Description("Destination step")),
		mcp.WithString("to_input", mcp.Required(), mcp.Description("Destination input name")),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOutputSchema[EditResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveConnection))

	s.mcpServer.AddTool(mcp.NewTool("report_layout",
		mcp.WithDescription("Report the measured port positions of a rendered step."),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Rendered step")),
		mcp.WithString("layout", mcp.Required(), mcp.Description(`JSON object, e.g. {"inputs":{"data":{"x":400,"y":70}},"outputs":{}}`)),
		mcp.WithOutputSchema[LayoutResponse](),
	), mcp.NewStructuredToolHandler(s.handleReportLayout))

	s.mcpServer.AddTool(mcp.NewTool("unmount_step",
		mcp.WithDescription("Drop every port a step registered, as if its renderer was torn down."),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Rendered step")),
		mcp.WithOutputSchema[LayoutResponse](),
	), mcp.NewStructuredToolHandler(s.handleUnmount))

	s.mcpServer.AddTool(mcp.NewTool("list_connections",
		mcp.WithDescription("List the connections that can be drawn with the ports registered so far."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[ConnectionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListConnections))

	s.mcpServer.AddTool(mcp.NewTool("get_workflow",
		mcp.WithDescription("Get the full workflow document."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetWorkflow)
}

func (s *Server) edit(applied bool) EditResponse {
	return EditResponse{Applied: applied, Revision: s.canvas.Revision()}
}

func (s *Server) requireStep(id string) error {
	if id == "" {
		return errors.New("step_id is required")
	}
	if !s.canvas.HasStep(id) {
		return fmt.Errorf("%w: %s", domain.ErrStepNotFound, id)
	}
	return nil
}

func (s *Server) handleAddStep(ctx context.Context, _ mcp.CallToolRequest, args addStepArgs) (EditResponse, error) {
	if args.Type == "" {
		return EditResponse{}, errors.New("type is required")
	}
	component := domain.Component{Type: args.Type}
	var id string
	if args.X != nil || args.Y != nil {
		var pos domain.Position
		if args.X != nil {
			pos.X = *args.X
		}
		if args.Y != nil {
			pos.Y = *args.Y
		}
		id = s.canvas.AddStepAt(ctx, component, pos)
	} else {
		id = s.canvas.AddStep(ctx, component)
	}
	resp := s.edit(true)
	resp.StepID = id
	return resp, nil
}

func (s *Server) handleRemoveStep(ctx context.Context, _ mcp.CallToolRequest, args stepArgs) (EditResponse, error) {
	if err := s.requireStep(args.StepID); err != nil {
		return EditResponse{}, err
	}
	return s.edit(s.canvas.RemoveStep(ctx, args.StepID)), nil
}

func (s *Server) handleMoveStep(ctx context.Context, _ mcp.CallToolRequest, args moveStepArgs) (EditResponse, error) {
	if err := s.requireStep(args.StepID); err != nil {
		return EditResponse{}, err
	}
	return s.edit(s.canvas.MoveStep(ctx, args.StepID, domain.Position{X: args.X, Y: args.Y})), nil
}

func (s *Server) handleSetOutputs(ctx context.Context, _ mcp.CallToolRequest, args outputsArgs) (EditResponse, error) {
	if err := s.requireStep(args.StepID); err != nil {
		return EditResponse{}, err
	}
	return s.edit(s.canvas.SetOutputs(ctx, args.StepID, args.Outputs...)), nil
}

func (s *Server) handleSetInputParameter(ctx context.Context, _ mcp.CallToolRequest, args parameterArgs) (EditResponse, error) {
	if err := s.requireStep(args.StepID); err != nil {
		return EditResponse{}, err
	}
	if args.Input == "" {
		return EditResponse{}, errors.New("input is required")
	}
	return s.edit(s.canvas.SetInputParameter(ctx, args.StepID, args.Input, args.Value)), nil
}

func (s *Server) handleSetConnection(ctx context.Context, _ mcp.CallToolRequest, args connectionArgs) (EditResponse, error) {
	if err := s.requireStep(args.ToStep); err != nil {
		return EditResponse{}, err
	}
	if err := s.requireStep(args.FromStep); err != nil {
		return EditResponse{}, err
	}
	if args.FromOutput == "" || args.ToInput == "" {
		return EditResponse{}, errors.New("from_output and to_input are required")
	}
	return s.edit(s.canvas.SetConnection(ctx, args.FromStep, args.FromOutput, args.ToStep, args.ToInput)), nil
}

func (s *Server) handleRemoveConnection(ctx context.Context, _ mcp.CallToolRequest, args connectionArgs) (EditResponse, error) {
	if err := s.requireStep(args.ToStep); err != nil {
		return EditResponse{}, err
	}
	return s.edit(s.canvas.RemoveConnection(ctx, args.FromStep, args.FromOutput, args.ToStep, args.ToInput)), nil
}

func (s *Server) handleReportLayout(ctx context.Context, _ mcp.CallToolRequest, args layoutArgs) (LayoutResponse, error) {
	if err := s.requireStep(args.StepID); err != nil {
		return LayoutResponse{}, err
	}
	var layout lifecycle.Layout
	if err := json.Unmarshal([]byte(args.Layout), &layout); err != nil {
		return LayoutResponse{}, fmt.Errorf("invalid layout: %w", err)
	}
	diff, _ := s.canvas.ReportLayout(ctx, args.StepID, layout)
	return s.layout(diff), nil
}

func (s *Server) handleUnmount(ctx context.Context, _ mcp.CallToolRequest, args stepArgs) (LayoutResponse, error) {
	if args.StepID == "" {
		return LayoutResponse{}, errors.New("step_id is required")
	}
	return s.layout(s.canvas.Unmount(ctx, args.StepID)), nil
}

func (s *Server) layout(diff lifecycle.Diff) LayoutResponse {
	return LayoutResponse{
		Set:        keyStrings(diff.Set),
		Unset:      keyStrings(diff.Unset),
		Suppressed: diff.Suppressed,
		Revision:   s.canvas.Revision(),
	}
}

func (s *Server) handleListConnections(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (ConnectionsResponse, error) {
	views := s.canvas.Connections(ctx)
	if views == nil {
		views = []domain.ConnectionView{}
	}
	return ConnectionsResponse{Connections: views, Revision: s.canvas.Revision()}, nil
}

func (s *Server) handleGetWorkflow(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.workflowJSON()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) workflowJSON() (string, error) {
	var b strings.Builder
	if err := codec.Encode(&b, s.canvas.Workflow(), codec.FormatJSON); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(WorkflowURI, "Current Workflow",
		mcp.WithResourceDescription("The workflow document being edited on the canvas."),
		mcp.WithMIMEType("application/json"),
	), func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.workflowJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode workflow: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      WorkflowURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(ConnectionsURI, "Drawable Connections",
		mcp.WithResourceDescription("Connections whose endpoints are both registered."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.canvas.Connections(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to encode connections: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ConnectionsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func keyStrings(keys []domain.PortKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
