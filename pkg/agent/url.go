package agent

import "strings"

// MCPURL returns the Streamable HTTP endpoint for a configured server URL.
// A trailing "/sse" is replaced by "/mcp"; any other URL gets "/mcp"
// appended unless it already ends with it.
func MCPURL(url string) string {
	switch {
	case strings.HasSuffix(url, "/sse"):
		return strings.TrimSuffix(url, "/sse") + "/mcp"
	case strings.HasSuffix(url, "/mcp"):
		return url
	default:
		return strings.TrimRight(url, "/") + "/mcp"
	}
}
