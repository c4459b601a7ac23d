package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/Carmen-Shannon/oxy-viewer/rpc"
	"github.com/spf13/cobra"
)

type ctlOptions struct {
	dim     string
	client  string
	url     string
	timeout time.Duration
}

func newCtlCmd() *cobra.Command {
	opts := &ctlOptions{}
	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Drive a running viewer",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.dim, "dim", "d2", "viewer to address: d2 or d3")
	pf.StringVar(&opts.client, "client", "ctl", "client name owning the scene")
	pf.StringVar(&opts.url, "url", "", "service URL (default "+rpc.URL(rpc.DefaultAddress, geometry.Dim2)+" or /d3)")
	pf.DurationVar(&opts.timeout, "timeout", 10*time.Second, "deadline for the whole command")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every entity of the client's scene",
			Args:  cobra.NoArgs,
			RunE: opts.run(func(ctx context.Context, c *rpc.Client, _ geometry.Dim, p *printer) error {
				if _, err := c.Call(ctx, rpc.MethodClear, opts.client, nil); err != nil {
					return err
				}
				p.success("cleared scene %q", opts.client)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <entity-id>",
			Short: "Remove one entity from the client's scene",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil || id == 0 {
					return fmt.Errorf("remove: %q is not an entity id", args[0])
				}
				return opts.run(func(ctx context.Context, c *rpc.Client, _ geometry.Dim, p *printer) error {
					if _, err := c.Call(ctx, rpc.MethodRemove, opts.client, rpc.RemoveParams{ID: id}); err != nil {
						return err
					}
					p.success("removed entity %d from %q", id, opts.client)
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "kill",
			Short: "Ask the viewer to shut down",
			Args:  cobra.NoArgs,
			RunE: opts.run(func(ctx context.Context, c *rpc.Client, dim geometry.Dim, p *printer) error {
				if _, err := c.Call(ctx, rpc.MethodKillServer, opts.client, nil); err != nil {
					return err
				}
				p.success("%s viewer is shutting down", dim)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "demo",
			Short: "Add one of every primitive to the client's scene",
			Args:  cobra.NoArgs,
			RunE: opts.run(func(ctx context.Context, c *rpc.Client, dim geometry.Dim, p *printer) error {
				steps := demo2D(rpc.NewClient2D(c, opts.client))
				if dim == geometry.Dim3 {
					steps = demo3D(rpc.NewClient3D(c, opts.client))
				}
				return runDemo(ctx, steps, p)
			}),
		},
	)
	return cmd
}

// run wraps fn with flag parsing, a deadline and a connection to the selected service.
func (o *ctlOptions) run(fn func(ctx context.Context, c *rpc.Client, dim geometry.Dim, p *printer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		dim, err := parseDim(o.dim)
		if err != nil {
			return err
		}
		url := o.url
		if url == "" {
			url = rpc.URL(rpc.DefaultAddress, dim)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
		defer cancel()
		c, err := rpc.Dial(ctx, url)
		if err != nil {
			return err
		}
		defer c.Close()

		return fn(ctx, c, dim, newPrinter(cmd.OutOrStdout()))
	}
}
