package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// defaultsView is the YAML shape printed by the defaults command.
type defaultsView struct {
	Color      string `yaml:"color"`
	GlyphColor string `yaml:"glyphColor"`
	Animates   bool   `yaml:"animates"`
	Enabled    bool   `yaml:"enabled"`
	Source     string `yaml:"source"`
}

// NewDefaultsCommand creates the defaults command.
func NewDefaultsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the marker defaults after config and environment overrides",
		Long: `Print the values used for marker fields left at their zero value:
color, glyphColor, animates and enabled. Source names the config file
that was read, or "built-in" when there was none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			d := cfg.Defaults()
			view := defaultsView{
				Color:      d.Color,
				GlyphColor: d.GlyphColor,
				Animates:   d.Animates,
				Enabled:    d.Enabled,
				Source:     cfg.File,
			}
			if view.Source == "" {
				view.Source = "built-in"
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(view); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
