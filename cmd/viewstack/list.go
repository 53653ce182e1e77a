package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-viewstack/pkg/manifest"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the components a manifest registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("manifest")
			m, err := manifest.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range m.Components {
				source := entry.Template
				if source == "" {
					source = "(inline)"
				}
				fmt.Fprintf(out, "%-20s %-8s %s\n", entry.Name, entry.Engine, source)
			}
			return nil
		},
	}
}
