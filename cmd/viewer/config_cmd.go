package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "~/.config/oxy-viewer/viewer.yaml"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check viewer config files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config (" + defaultConfigPath + " unless a path is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			expanded, err := homedir.Expand(path)
			if err != nil {
				return err
			}
			if _, err := os.Stat(expanded); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", expanded)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Save(expanded, config.Default()); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout()).success("wrote %s", expanded)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	checkCmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Load and validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.success("%s is valid", args[0])
			p.detail("listen", cfg.Address())
			p.detail("window", fmt.Sprintf("%q %dx%d", cfg.Window.Title, cfg.Window.Width, cfg.Window.Height))
			p.detail("render", fmt.Sprintf("frame_limit=%g vsync=%t msaa=%d clear_color=%s",
				cfg.Render.FrameLimit, cfg.Render.VSync, cfg.Render.MSAA, cfg.Render.ClearColor))
			if cfg.Render.SoftwareFallback {
				p.warn("software fallback adapter requested")
			}
			if cfg.Profiling {
				p.warn("profiling is enabled")
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, checkCmd)
	return cmd
}
