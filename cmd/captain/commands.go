package main

import (
	"github.com/spf13/cobra"
)

var (
	mcpURL      string
	simple      bool
	debug       bool
	outputDir   string
	statsAsJSON bool

	rootCmd = &cobra.Command{
		Use:   "captain [question...]",
		Short: "Knowledge Captain: ask questions about the GraphRAG knowledge graph",
		Long: `Knowledge Captain answers questions by calling the GraphRAG MCP tools
(local, global, drift and basic search, entity lookup).

Without arguments it starts an interactive chat that keeps the conversation
history for follow-up questions. Type "clear" to reset the history and
"quit", "exit" or "q" to leave.`,
		SilenceUsage: true,
		RunE:         runCaptain, // Defined in chat.go
	}

	statsCmd = &cobra.Command{
		Use:          "stats",
		Short:        "Print statistics of the local knowledge graph artifacts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runStats, // Defined in stats.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVar(&mcpURL, "mcp-url", "", "MCP server URL (default: MCP_SERVER_URL)")
	rootCmd.Flags().BoolVar(&simple, "simple", false, "Use the short assistant prompt instead of the Knowledge Captain prompt")

	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&outputDir, "output-dir", "", "Artifact directory (default: GRAPHRAG_OUTPUT_DIR or settings.yaml under GRAPHRAG_ROOT)")
	statsCmd.Flags().BoolVar(&statsAsJSON, "json", false, "Print statistics as JSON")
}
