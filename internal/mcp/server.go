package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agrtools/agr-genomics-mcp/internal/agr"
)

const (
	serverName      = "agr-genomics"
	serverVersion   = "2.0.0"
	protocolVersion = "2024-11-05"
)

// Server reads newline-delimited JSON-RPC requests from its input,
// dispatches them one at a time, and writes one response line per
// request that carries an id.
type Server struct {
	api      agr.API
	registry *Registry
	config   agr.Config
	in       io.Reader
	out      io.Writer
}

// NewServer creates a new MCP server instance for the configured tool
// set.
func NewServer(cfg agr.Config) (*Server, error) {
	if err := setupLogging(cfg); err != nil {
		return nil, err
	}

	registry, err := NewRegistry(cfg.ToolSet)
	if err != nil {
		return nil, err
	}

	return &Server{
		api:      agr.NewClient(cfg),
		registry: registry,
		config:   cfg,
		in:       os.Stdin,
		out:      os.Stdout,
	}, nil
}

// setupLogging routes all logs to stderr (stdout carries the wire
// protocol), optionally teeing into a log file.
func setupLogging(cfg agr.Config) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = zerolog.MultiLevelWriter(w, f)
	}

	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return nil
}

// Run starts the read loop and blocks until end of input. Requests are
// processed strictly sequentially; the only suspension point is the
// upstream fetch.
func (s *Server) Run() error {
	log.Info().
		Str("tool_set", s.config.ToolSet).
		Int("tools", len(s.registry.Definitions())).
		Msg("Starting Alliance of Genome Resources MCP server")

	// Lines are read without a length cap; BLAST sequence payloads can
	// run to many megabytes.
	reader := bufio.NewReader(s.in)
	encoder := json.NewEncoder(s.out)

	for {
		raw, readErr := reader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("failed to read input: %w", readErr)
		}

		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			if readErr == io.EOF {
				break
			}
			continue
		}

		var request JSONRPCRequest
		if err := json.Unmarshal(line, &request); err != nil {
			log.Error().Err(err).Msg("Failed to parse request line")
			// The id cannot be recovered from a malformed line.
			parseError := &JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      nil,
				Error: &JSONRPCError{
					Code:    -32700,
					Message: "Parse error",
					Data:    err.Error(),
				},
			}
			if err := encoder.Encode(parseError); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
			continue
		}

		response := s.handleRequest(&request)

		// Notifications never receive a response line.
		if request.ID == nil || response == nil {
			continue
		}
		if err := encoder.Encode(response); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
	}

	log.Info().Msg("End of input, shutting down")
	return nil
}

// handleRequest routes a decoded JSON-RPC request by method.
func (s *Server) handleRequest(request *JSONRPCRequest) *JSONRPCResponse {
	ctx := context.Background()

	if request.JSONRPC != "2.0" {
		if request.ID == nil {
			return nil
		}
		return errorResponse(request.ID, -32600, "Invalid Request", "jsonrpc must be '2.0'")
	}
	if request.Method == "" {
		if request.ID == nil {
			return nil
		}
		return errorResponse(request.ID, -32600, "Invalid Request", "method is required")
	}

	switch request.Method {
	case "initialize":
		return s.handleInitialize(request)
	case "tools/list":
		return s.handleToolsList(request)
	case "tools/call":
		return s.handleToolCall(ctx, request)
	case "notifications/initialized", "initialized":
		return nil
	default:
		if request.ID == nil {
			return nil
		}
		return errorResponse(request.ID, -32601, "Method not found", "")
	}
}

// handleInitialize returns the fixed capability announcement.
func (s *Server) handleInitialize(request *JSONRPCRequest) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      request.ID,
		Result: InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: ServerCapabilities{
				Tools: ToolCapabilities{
					// The catalog is fixed at startup.
					ListChanged: false,
				},
			},
			ServerInfo: ServerInfo{
				Name:    serverName,
				Version: serverVersion,
			},
		},
	}
}

// handleToolsList returns the registered tool definitions.
func (s *Server) handleToolsList(request *JSONRPCRequest) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      request.ID,
		Result:  ToolsListResult{Tools: s.registry.Definitions()},
	}
}

// handleToolCall executes a tool call. Tool-level failures (unknown
// tool, missing arguments, upstream fetch errors) are reported inside
// the result payload; only an unexpected panic escalates to a JSON-RPC
// protocol error.
func (s *Server) handleToolCall(ctx context.Context, request *JSONRPCRequest) (resp *JSONRPCResponse) {
	callID := uuid.NewString()
	logger := log.With().Str("component", "dispatcher").Str("call_id", callID).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Unexpected failure during tool call")
			resp = errorResponse(request.ID, -32603, "Internal error", fmt.Sprint(r))
		}
	}()

	var params ToolCallParams
	if err := json.Unmarshal(request.Params, &params); err != nil {
		return errorResponse(request.ID, -32602, "Invalid params", err.Error())
	}

	logger.Info().Str("tool", params.Name).Msg("Tool call received")

	tool, ok := s.registry.Lookup(params.Name)
	if !ok {
		logger.Warn().Str("tool", params.Name).Msg("Unknown tool requested")
		return textResponse(request.ID, fmt.Sprintf("Unknown tool: %s", params.Name), false)
	}

	args, problem := tool.validate(params.Arguments)
	if problem == "" && tool.Check != nil {
		problem = tool.Check(args)
	}
	if problem != "" {
		logger.Warn().Str("tool", params.Name).Str("problem", problem).Msg("Argument validation failed")
		return textResponse(request.ID, "Error: "+problem, true)
	}

	raw, err := tool.Run(ctx, s.api, args)
	if err != nil {
		logger.Warn().Str("tool", params.Name).Err(err).Msg("Upstream fetch failed")
		return textResponse(request.ID, fmt.Sprintf("%s failed: %s", tool.FailLabel, err), true)
	}

	var text string
	if tool.Format != nil {
		text = tool.Format(raw, args)
	} else {
		text = formatDefault(tool.Header(args), raw)
	}

	logger.Info().Str("tool", params.Name).Int("chars", len(text)).Msg("Tool call completed")
	return textResponse(request.ID, text, false)
}

func errorResponse(id interface{}, code int, message, data string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func textResponse(id interface{}, text string, isError bool) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: ToolCallResult{
			Content: []Content{{Type: "text", Text: text}},
			IsError: isError,
		},
	}
}
