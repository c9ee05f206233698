package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/goattr/internal/parse"
	"github.com/dshills/goattr/internal/source"
	"github.com/dshills/goattr/internal/storage"
	"github.com/dshills/goattr/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound   = -32001 // Specified path is not inside a Go module
	ErrorCodeScanInProgress    = -32002 // Another explicit scan is already running
	ErrorCodeUnknownDescriptor = -32003 // Descriptor type missing or not marked
	ErrorCodeEmptyDescriptor   = -32004 // Descriptor parameter is empty
)

// handleScan handles the scan tool invocation
func (s *Server) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	if !s.scanLock.TryAcquire() {
		return nil, newMCPError(ErrorCodeScanInProgress, "a scan is already running", map[string]interface{}{
			"path": path,
		})
	}
	defer s.scanLock.Release()

	stats, err := s.index.Scan(ctx, path)
	if err != nil {
		return nil, scanError(err)
	}

	response := map[string]interface{}{
		"scanned":         true,
		"files_parsed":    stats.FilesParsed,
		"files_unchanged": stats.FilesUnchanged,
		"files_removed":   stats.FilesRemoved,
		"files_failed":    stats.FilesFailed,
		"classes":         stats.Classes,
		"duration_ms":     stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFindUsages handles the find_usages tool invocation
func (s *Server) handleFindUsages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := s.prepare(ctx, request)
	if err != nil {
		return nil, err
	}

	usages, err := q.parse.FindUsages(ctx, q.roots...)
	if err != nil {
		return nil, discoveryError(err)
	}
	if usages == nil {
		usages = []string{}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"descriptor": q.descriptor,
		"ascend":     q.parse.Ascending(),
		"usages":     usages,
		"count":      len(usages),
	})), nil
}

// handleGetDescriptors handles the get_descriptors tool invocation
func (s *Server) handleGetDescriptors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := s.prepare(ctx, request)
	if err != nil {
		return nil, err
	}
	class, err := requireString(q.args, "class")
	if err != nil {
		return nil, err
	}

	result, err := q.parse.On(class).Get(ctx)
	if err != nil {
		return nil, discoveryError(err)
	}

	descriptors := []types.Descriptor{}
	if result != nil {
		descriptors = result.Descriptors
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"descriptor":  q.descriptor,
		"class":       class,
		"ascend":      q.parse.Ascending(),
		"found":       result != nil,
		"descriptors": descriptors,
	})), nil
}

// handleGetMethodDescriptors handles the get_method_descriptors tool invocation
func (s *Server) handleGetMethodDescriptors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := s.prepare(ctx, request)
	if err != nil {
		return nil, err
	}
	class, err := requireString(q.args, "class")
	if err != nil {
		return nil, err
	}

	result, err := q.parse.On(class).InMethods(ctx)
	if err != nil {
		return nil, discoveryError(err)
	}

	methods := []types.DiscoveredMethod{}
	if result != nil {
		methods = result.Methods
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"descriptor": q.descriptor,
		"class":      class,
		"found":      result != nil,
		"methods":    methods,
	})), nil
}

// handleDiscoverAll handles the discover_all tool invocation
func (s *Server) handleDiscoverAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := s.prepare(ctx, request)
	if err != nil {
		return nil, err
	}

	targets, err := q.parse.All(ctx, q.roots...)
	if err != nil {
		return nil, discoveryError(err)
	}
	if targets == nil {
		targets = []types.DiscoveredTarget{}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"descriptor": q.descriptor,
		"ascend":     q.parse.Ascending(),
		"targets":    targets,
		"count":      len(targets),
	})), nil
}

// handleDescribeDescriptor handles the describe_descriptor tool invocation
func (s *Server) handleDescribeDescriptor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := s.prepare(ctx, request)
	if err != nil {
		return nil, err
	}

	meta, err := q.parse.Meta()
	if err != nil {
		return nil, discoveryError(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"descriptor": q.descriptor,
		"meta":       meta,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	if _, err := s.index.Scan(ctx, path); err != nil {
		return nil, scanError(err)
	}

	response := map[string]interface{}{
		"path":    path,
		"files":   s.index.FileCount(),
		"classes": len(s.index.Classes()),
		"modules": s.index.Modules(),
		"cache": map[string]interface{}{
			"enabled": s.store != nil,
		},
	}

	if m, ok := s.store.(storage.Maintainer); ok {
		stats, err := m.Stats(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to get cache statistics", map[string]interface{}{
				"error": err.Error(),
			})
		}
		response["cache"] = map[string]interface{}{
			"enabled":    true,
			"backend":    stats.Backend,
			"entries":    stats.Entries,
			"size_bytes": stats.SizeBytes,
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// query carries the validated parameters shared by the discovery tools
type query struct {
	args       map[string]interface{}
	descriptor string
	roots      []string
	parse      parse.Parse
}

// prepare validates path and descriptor, rescans the project, and builds
// the discovery configuration
func (s *Server) prepare(ctx context.Context, request mcp.CallToolRequest) (*query, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	descriptor, ok := args["descriptor"].(string)
	if !ok || strings.TrimSpace(descriptor) == "" {
		return nil, newMCPError(ErrorCodeEmptyDescriptor, "descriptor parameter is required and cannot be empty", map[string]interface{}{
			"param":  "descriptor",
			"reason": "missing or empty",
		})
	}

	if _, err := s.index.Scan(ctx, path); err != nil {
		return nil, scanError(err)
	}

	p := parse.New(descriptor, s.index, s.index).WithLogger(s.logger.WithPrefix("parse"))
	if s.store != nil {
		p = p.WithCache(s.store)
	}
	if getBoolDefault(args, "ascend", false) {
		p = p.Ascend()
	}

	roots := getStringSlice(args, "roots")
	for i, root := range roots {
		if !filepath.IsAbs(root) {
			roots[i] = filepath.Join(path, root)
		}
	}
	if len(roots) == 0 {
		roots = []string{path}
	}

	return &query{args: args, descriptor: descriptor, roots: roots, parse: p}, nil
}

// Helper functions

// arguments extracts the argument object of a tool call
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// requirePath extracts and validates the path parameter
func requirePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}
	return path, nil
}

// requireString extracts a mandatory string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return value, nil
}

// scanError maps a scan failure onto an MCP error
func scanError(err error) error {
	if errors.Is(err, source.ErrNoModule) {
		return newMCPError(ErrorCodeProjectNotFound, "path is not inside a Go module", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return newMCPError(ErrorCodeInternalError, "scan failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// discoveryError maps a discovery failure onto an MCP error
func discoveryError(err error) error {
	switch {
	case errors.Is(err, types.ErrUnknownDescriptorType), errors.Is(err, types.ErrNotADescriptorType),
		errors.Is(err, types.ErrInvalidDirective):
		return newMCPError(ErrorCodeUnknownDescriptor, "descriptor type cannot be used", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrNoTargetClass):
		return newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	return newMCPError(ErrorCodeInternalError, "discovery failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is accessible
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	hasGoFiles := false
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(p, ".go") {
			hasGoFiles = true
			return filepath.SkipAll
		}
		return nil
	})

	if !hasGoFiles {
		return ErrNoGoFiles
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a list of strings, ignoring non-string items
func getStringSlice(args map[string]interface{}, key string) []string {
	switch val := args[key].(type) {
	case []string:
		return append([]string(nil), val...)
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoGoFiles       = errors.New("directory does not contain Go files")
)
