package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewstack/pkg/component"
	"github.com/goliatone/go-viewstack/pkg/manifest"
	"github.com/goliatone/go-viewstack/pkg/metrics"
	"github.com/goliatone/go-viewstack/pkg/view"
)

type renderOptions struct {
	component string
	data      string
	output    string
	encoding  string
	variant   string
	stats     bool
}

func renderCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [component]",
		Short: "Render a component to stdout or a file",
		Long: `Render a component declared in the manifest.

When no component is given and stdin is a terminal, a picker lists the
registered components.

Examples:
  viewstack render page --data page.yaml
  viewstack render --component page --output out.html --encoding latin1
  viewstack render card --variant dark`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.component = args[0]
			}
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.component, "component", "c", "", "component to render")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "YAML or JSON file with the component data")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "output charset, overrides the manifest")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "template variant, overrides the manifest theme default")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print render counts per component to stderr")

	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	verbose, _ := cmd.Flags().GetBool("verbose")

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	if opts.encoding != "" {
		m.Encoding = opts.encoding
	}

	registry := prometheus.NewRegistry()
	rendererOptions := []component.Option{
		component.WithLogger(newLogger(cmd.ErrOrStderr(), verbose)),
		component.WithObserver(metrics.New(metrics.WithRegistry(registry))),
	}
	if opts.variant != "" {
		rendererOptions = append(rendererOptions, component.WithViewOptions(view.WithVariant(opts.variant)))
	}
	renderer, err := m.Renderer(rendererOptions...)
	if err != nil {
		return err
	}

	name := opts.component
	if name == "" {
		if !interactive() {
			return errors.New("viewstack: --component is required when stdin is not a terminal")
		}
		if name, err = selectComponent(renderer.Components().Names()); err != nil {
			return err
		}
	}

	data, err := loadData(opts.data)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := renderer.Render(cmd.Context(), &out, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		success("Component %s written to %s", name, opts.output)
	} else if _, err := cmd.OutOrStdout().Write(out.Bytes()); err != nil {
		return err
	}

	if opts.stats {
		return printStats(registry)
	}
	return nil
}

func loadData(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	// YAML is a superset of JSON, so one decoder covers both.
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data %s: %w", path, err)
	}
	return data, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printStats(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather stats: %w", err)
	}

	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "viewstack_renders_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			var name, status string
			for _, label := range metric.GetLabel() {
				switch label.GetName() {
				case "component":
					name = label.GetValue()
				case "status":
					status = label.GetValue()
				}
			}
			counts[name+" "+status] += metric.GetCounter().GetValue()
		}
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		info("%-30s %.0f", key, counts[key])
	}
	return nil
}
