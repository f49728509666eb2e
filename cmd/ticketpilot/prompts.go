package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/prompt"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the LLM prompt templates",
	Long: `List the prompt templates in effect, with their version and the file
they were loaded from. Templates in prompts.dir override the built-in ones.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadPrompts()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tVERSION\tSOURCE\tDESCRIPTION")
		for _, t := range set.List() {
			fmt.Fprintf(tw, "%s\tv%d\t%s\t%s\n", t.Name, t.Version, t.Source, t.Description)
		}
		return tw.Flush()
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a prompt template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadPrompts()
		if err != nil {
			return err
		}
		t, ok := set.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown prompt template: %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s v%d (%s)\n%s", t.Name, t.Version, t.Source, t.Body)
		return nil
	},
}

func init() {
	promptsCmd.AddCommand(promptsShowCmd)
}

func loadPrompts() (*prompt.Set, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return prompt.NewSet(prompt.WithDir(cfg.Prompts.Dir), prompt.WithLogger(zap.NewNop()))
}
