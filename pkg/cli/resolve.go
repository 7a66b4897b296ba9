package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evanw/esbuild-plugin-monaco/internal/config"
	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
	"github.com/evanw/esbuild-plugin-monaco/pkg/monaco"
	"github.com/spf13/cobra"
)

func newResolveCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the catalog and what would be bundled, without building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, g)
		},
	}
	addPluginFlags(cmd.Flags())
	return cmd
}

func runResolve(cmd *cobra.Command, g *globals) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, g, cwd)
	if err != nil {
		return err
	}
	_, level, _ := config.ParseLogLevel(cfg.Build.LogLevel)
	log := logger.NewStderrLog(logger.StderrOptions{LogLevel: level})
	defer log.Done()

	plugin, err := monaco.New(cfg.PluginOptions(cwd))
	if err != nil {
		return classify(err)
	}
	logger.FromAPIMessages(log, plugin.Messages(), logger.MsgID_None, logger.Warning)

	table, err := plugin.WorkerFilenames()
	if err != nil {
		return classify(err)
	}
	if err := plugin.Validate(nil); err != nil {
		return classify(err)
	}

	printResolution(cmd.OutOrStdout(), cwd, plugin, table)
	return nil
}

func printResolution(out io.Writer, cwd string, plugin *monaco.Plugin, table map[string]string) {
	cat := plugin.Catalog()
	version := cat.Version
	if version == "" {
		version = "unknown version"
	}

	fmt.Fprintln(out, headingStyle.Render("Catalog")+relativePath(cwd, cat.MetadataPath)+subtitleStyle.Render(" ("+version+")"))
	fmt.Fprintln(out, headingStyle.Render("Features")+joinLabels(plugin.Features()))
	fmt.Fprintln(out, headingStyle.Render("Languages")+joinLabels(plugin.Languages()))
	fmt.Fprintln(out, headingStyle.Render("Workers"))

	labels := make([]string, 0, len(table))
	width := 0
	for label := range table {
		labels = append(labels, label)
		if len(label) > width {
			width = len(label)
		}
	}
	sort.Strings(labels)
	column := lipgloss.NewStyle().Width(width + 2)
	for _, label := range labels {
		fmt.Fprintln(out, "  "+column.Render(labelStyle.Render(label))+table[label])
	}
}

func joinLabels(defs []monaco.ModuleDefinition) string {
	if len(defs) == 0 {
		return subtitleStyle.Render("(none)")
	}
	labels := make([]string, 0, len(defs))
	for _, def := range defs {
		labels = append(labels, def.Label)
	}
	return strings.Join(labels, ", ")
}
