package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cristofima/maf-graphrag-series/internal/config"
	"github.com/cristofima/maf-graphrag-series/internal/util"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func runStats(cmd *cobra.Command, args []string) error {
	initLogger(util.GetEnvBool("DEBUG", false), util.GetEnvString("LOG_FORMAT", "text"))

	dir, err := statsDir()
	if err != nil {
		return err
	}

	b, err := graph.Load(cmd.Context(), graph.LoadOptions{Dir: dir, Validate: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		if graph.IsNotIndexed(err) {
			fmt.Fprintln(os.Stderr, warnStyle.Render("Hint:"), graph.IndexHint)
		}
		return err
	}

	stats := b.Stats()
	if statsAsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			graph.Stats
			OutputDir string `json:"output_dir"`
		}{stats, dir})
	}

	fmt.Println(statsTable(dir, stats))
	return nil
}

func statsDir() (string, error) {
	if outputDir != "" {
		return outputDir, nil
	}
	if dir := util.GetEnv("GRAPHRAG_OUTPUT_DIR"); dir != "" {
		return dir, nil
	}
	return config.ResolveOutputDir(util.GetEnvString("GRAPHRAG_ROOT", "."))
}

func statsTable(dir string, s graph.Stats) string {
	label := lipgloss.NewStyle().Width(20)
	rows := []string{
		titleStyle.Render("Knowledge Graph"),
		dimStyle.Render(dir),
		"",
		label.Render("Entities") + fmt.Sprint(s.Entities),
		label.Render("Relationships") + fmt.Sprint(s.Relationships),
		label.Render("Communities") + fmt.Sprint(s.Communities),
		label.Render("Community reports") + fmt.Sprint(s.CommunityReports),
		label.Render("Text units") + fmt.Sprint(s.TextUnits),
		label.Render("Documents") + optionalCount(s.HasDocuments, s.Documents),
		label.Render("Covariates") + optionalCount(s.HasCovariates, s.Covariates),
	}
	if len(s.EntityTypes) > 0 {
		rows = append(rows, "", label.Render("Entity types")+strings.Join(s.EntityTypes, ", "))
	}
	return bannerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func optionalCount(present bool, n int) string {
	if !present {
		return dimStyle.Render("not available")
	}
	return fmt.Sprint(n)
}
