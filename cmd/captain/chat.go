package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cristofima/maf-graphrag-series/internal/config"
	"github.com/cristofima/maf-graphrag-series/pkg/agent"
	"github.com/cristofima/maf-graphrag-series/pkg/ai/openai"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"
	"github.com/cristofima/maf-graphrag-series/pkg/logger/console"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func initLogger(cfgDebug bool, format string) {
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug || cfgDebug,
		Format: format,
		Prefix: "captain",
	}))
}

func runCaptain(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAgent()
	if err != nil {
		initLogger(false, "text")
		return err
	}
	initLogger(cfg.Debug, cfg.LogFormat)

	if mcpURL != "" {
		cfg.MCPServerURL = mcpURL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := newRunner(cfg)
	if err != nil {
		return err
	}

	if err := runner.Connect(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Connection Error:"), err)
		fmt.Fprintln(os.Stderr, warnStyle.Render("Hint:"), "Is the MCP server running at", agent.MCPURL(cfg.MCPServerURL)+"?")
		return err
	}
	defer runner.Close()

	renderer := newRenderer()
	if len(args) > 0 {
		return askOnce(ctx, runner, renderer, strings.Join(args, " "))
	}
	return chat(ctx, runner, renderer, os.Stdin, os.Stdout)
}

func newRunner(cfg *config.AgentConfig) (*agent.Runner, error) {
	chatClient := openai.NewChatClient(openai.NewChatClientParams{
		Endpoint:   cfg.Endpoint,
		APIVersion: cfg.APIVersion,
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Deployment,
		MaxRounds:  cfg.MaxRounds,
	})

	mcpClient, err := agent.DialStreamable(cfg.MCPServerURL, mcpHeaders())
	if err != nil {
		return nil, err
	}

	prompt := agent.KnowledgeCaptainPrompt
	if simple {
		prompt = agent.SimpleAssistantPrompt
	}

	return agent.NewRunner(chatClient, agent.NewMCPToolbox(mcpClient),
		agent.WithSystemPrompt(prompt),
		agent.WithMaxRounds(cfg.MaxRounds),
		agent.WithHistoryTokens(cfg.HistoryTokens),
	), nil
}

// mcpHeaders forwards MCP_API_KEY so the agent can reach a protected server.
func mcpHeaders() map[string]string {
	key := os.Getenv("MCP_API_KEY")
	if key == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + key}
}

func askOnce(ctx context.Context, runner *agent.Runner, renderer *glamour.TermRenderer, question string) error {
	fmt.Println(userStyle.Render("Query:"), question)
	fmt.Println()

	start := time.Now()
	resp, err := runner.Ask(ctx, question)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return err
	}
	fmt.Println(answerPanel(renderer, "Answer", resp.Text, resp.ToolsUsed, time.Since(start)))
	return nil
}

func chat(ctx context.Context, runner *agent.Runner, renderer *glamour.TermRenderer, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, banner())
	fmt.Fprintln(out)
	fmt.Fprintln(out, successStyle.Render("✓"), "Connected to MCP Server")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, userStyle.Render("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, warnStyle.Render("Goodbye!"))
			return nil
		case "clear":
			runner.ClearHistory()
			fmt.Fprintln(out, successStyle.Render("✓"), "Conversation history cleared.")
			fmt.Fprintln(out)
			continue
		}

		fmt.Fprintln(out, dimStyle.Render("Thinking..."))
		start := time.Now()
		resp, err := runner.Ask(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, warnStyle.Render("Interrupted. Goodbye!"))
				return nil
			}
			logger.Debug("Ask failed", "err", err)
			fmt.Fprintln(out, errorStyle.Render("Error:"), err)
			fmt.Fprintln(out)
			continue
		}

		fmt.Fprintln(out, answerPanel(renderer, "Agent", resp.Text, resp.ToolsUsed, time.Since(start)))
		fmt.Fprintln(out)
	}
}
