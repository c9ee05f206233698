// Package mcp implements the Model Context Protocol (MCP) server for goattr.
//
// The server exposes descriptor discovery over Go source to AI coding
// assistants:
//   - scan: Parse a source tree and report directive errors
//   - find_usages: List classes carrying a descriptor
//   - get_descriptors: Class-level instances on one class
//   - get_method_descriptors: Method-level instances on one class
//   - discover_all: Both levels for every class using a descriptor
//   - describe_descriptor: Placement rules of a descriptor type
//   - get_status: Index and cache statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is started via the serve command:
//
//	goattr serve
//
// # Tool: get_descriptors
//
//	Request:
//	{
//	  "name": "get_descriptors",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "descriptor": "example.com/app/attrs.Entity",
//	    "class": "example.com/app/models.User",
//	    "ascend": true
//	  }
//	}
//
//	Response:
//	{
//	  "ascend": true,
//	  "class": "example.com/app/models.User",
//	  "descriptor": "example.com/app/attrs.Entity",
//	  "descriptors": [
//	    {"type": "example.com/app/attrs.Entity", "fields": {"Table": "users"}}
//	  ],
//	  "found": true
//	}
//
// Every query tool rescans path first; unchanged files are not parsed again.
// Identifiers are import paths joined to type names with a dot.
//
// # Error Handling
//
// Errors are returned as MCPError values carrying JSON-RPC codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (filesystem, cache, etc.)
//   - -32001: Path is not inside a Go module
//   - -32002: Scan in progress
//   - -32003: Descriptor type unknown or not marked with //@Descriptor
//   - -32004: Descriptor parameter empty
//
// # Logging
//
// The server logs to stderr (stdout is reserved for MCP protocol). Set the
// level with GOATTR_LOG_LEVEL=debug.
package mcp
