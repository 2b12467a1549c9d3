package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMCPURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://127.0.0.1:8011/mcp", "http://127.0.0.1:8011/mcp"},
		{"http://127.0.0.1:8011/sse", "http://127.0.0.1:8011/mcp"},
		{"http://127.0.0.1:8011", "http://127.0.0.1:8011/mcp"},
		{"http://127.0.0.1:8011/", "http://127.0.0.1:8011/mcp"},
		{"https://graphrag.example.com/api", "https://graphrag.example.com/api/mcp"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MCPURL(tt.in))
		})
	}
}
