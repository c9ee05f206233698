package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a directory inside a Go module; it is rescanned before the query",
	}
}

func descriptorProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Descriptor type as import path and type name (e.g. 'example.com/app/attrs.Route')",
	}
}

func classProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Class as import path and type name (e.g. 'example.com/app/models.User')",
	}
}

func ascendProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "If true, class-level lookups also consult the embedded parent chain",
		"default":     false,
	}
}

func rootsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Directories to search, relative to path or absolute (default: path itself)",
		"items": map[string]interface{}{
			"type": "string",
		},
	}
}

// scanTool returns the tool definition for scan
func scanTool() mcp.Tool {
	return mcp.Tool{
		Name:        "scan",
		Description: "Scan a Go source tree and report parse statistics and directive errors",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": pathProperty(),
			},
			Required: []string{"path"},
		},
	}
}

// findUsagesTool returns the tool definition for find_usages
func findUsagesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_usages",
		Description: "List the classes that carry a descriptor on themselves, their parents (with ascend), or their methods",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path":       pathProperty(),
				"descriptor": descriptorProperty(),
				"roots":      rootsProperty(),
				"ascend":     ascendProperty(),
			},
			Required: []string{"path", "descriptor"},
		},
	}
}

// getDescriptorsTool returns the tool definition for get_descriptors
func getDescriptorsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_descriptors",
		Description: "Return the deduplicated instances of a descriptor declared on one class",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path":       pathProperty(),
				"descriptor": descriptorProperty(),
				"class":      classProperty(),
				"ascend":     ascendProperty(),
			},
			Required: []string{"path", "descriptor", "class"},
		},
	}
}

// getMethodDescriptorsTool returns the tool definition for get_method_descriptors
func getMethodDescriptorsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_method_descriptors",
		Description: "Return the instances of a descriptor on each method of one class, including promoted methods",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path":       pathProperty(),
				"descriptor": descriptorProperty(),
				"class":      classProperty(),
			},
			Required: []string{"path", "descriptor", "class"},
		},
	}
}

// discoverAllTool returns the tool definition for discover_all
func discoverAllTool() mcp.Tool {
	return mcp.Tool{
		Name:        "discover_all",
		Description: "Return class- and method-level instances of a descriptor for every class using it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path":       pathProperty(),
				"descriptor": descriptorProperty(),
				"roots":      rootsProperty(),
				"ascend":     ascendProperty(),
			},
			Required: []string{"path", "descriptor"},
		},
	}
}

// describeDescriptorTool returns the tool definition for describe_descriptor
func describeDescriptorTool() mcp.Tool {
	return mcp.Tool{
		Name:        "describe_descriptor",
		Description: "Report where a descriptor type may be placed and whether it is repeatable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path":       pathProperty(),
				"descriptor": descriptorProperty(),
			},
			Required: []string{"path", "descriptor"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report indexed files, classes, modules, and cache statistics",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": pathProperty(),
			},
			Required: []string{"path"},
		},
	}
}
