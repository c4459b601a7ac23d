package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "viewer",
		Short:         "Remote-driven 2D and 3D geometry viewer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newViewerCmd(geometry.Dim2),
		newViewerCmd(geometry.Dim3),
		newCtlCmd(),
		newConfigCmd(),
	)
	return root
}

type viewerOptions struct {
	configPath string
	port       int
	headless   bool
}

func newViewerCmd(dim geometry.Dim) *cobra.Command {
	opts := &viewerOptions{}
	cmd := &cobra.Command{
		Use:   dim.String() + " [with-port <port>]",
		Short: fmt.Sprintf("Open the %dD viewer and serve remote calls at /%s", int(dim), dim),
		Example: fmt.Sprintf("  viewer %[1]s\n  viewer %[1]s with-port 6000\n  viewer %[1]s --config ~/.config/oxy-viewer/viewer.yaml --headless",
			dim),
		Args: validateWithPort,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			return runViewer(cmd.Context(), cmd.ErrOrStderr(), dim, cfg, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML or TOML config file, reloaded on change")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port, overriding the config and with-port")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "serve remote calls without opening a window")
	return cmd
}

// resolve layers the config file, the with-port argument and the --port flag, in that order.
func (o *viewerOptions) resolve(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if port, ok, err := parseWithPort(args); err != nil {
		return cfg, err
	} else if ok {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = o.port
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateWithPort(_ *cobra.Command, args []string) error {
	_, _, err := parseWithPort(args)
	return err
}

// parseWithPort accepts either no arguments or exactly "with-port <port>".
func parseWithPort(args []string) (int, bool, error) {
	switch {
	case len(args) == 0:
		return 0, false, nil
	case len(args) == 2 && strings.EqualFold(args[0], "with-port"):
		port, err := strconv.Atoi(args[1])
		if err != nil || port < 1 || port > 65535 {
			return 0, false, fmt.Errorf("with-port: %q is not a port number", args[1])
		}
		return port, true, nil
	}
	return 0, false, fmt.Errorf("unexpected arguments %q, want: with-port <port>", args)
}

func parseDim(s string) (geometry.Dim, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d2", "2", "2d":
		return geometry.Dim2, nil
	case "d3", "3", "3d":
		return geometry.Dim3, nil
	}
	return 0, fmt.Errorf("unknown dimensionality %q, want d2 or d3", s)
}
