package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/goattr/internal/config"
	"github.com/dshills/goattr/internal/source"
	"github.com/dshills/goattr/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "goattr"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	index  *source.Index
	store  storage.Store
	close  func() error
	logger *log.Logger

	closeOnce sync.Once
	closeErr  error

	scanLock source.ScanLock
}

// NewServer creates a new MCP server instance from a loaded configuration
func NewServer(cfg *config.Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default().WithPrefix("mcp")
	}

	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}

	idx := source.New(source.Config{
		Workers:       cfg.Scan.Workers,
		IncludeTests:  cfg.Scan.IncludeTests,
		IncludeVendor: cfg.Scan.IncludeVendor,
	}, logger.WithPrefix("source"))

	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		index:  idx,
		store:  store,
		close:  closeStore,
		logger: logger,
	}

	if err := s.registerTools(); err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	s.logger.Info("serving on stdio", "name", ServerName, "version", ServerVersion, "cached", s.store != nil)
	return server.ServeStdio(s.mcp)
}

// Close releases the cache store; later calls are no-ops
func (s *Server) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.close() })
	return s.closeErr
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(scanTool(), s.handleScan)
	s.mcp.AddTool(findUsagesTool(), s.handleFindUsages)
	s.mcp.AddTool(getDescriptorsTool(), s.handleGetDescriptors)
	s.mcp.AddTool(getMethodDescriptorsTool(), s.handleGetMethodDescriptors)
	s.mcp.AddTool(discoverAllTool(), s.handleDiscoverAll)
	s.mcp.AddTool(describeDescriptorTool(), s.handleDescribeDescriptor)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	return nil
}
