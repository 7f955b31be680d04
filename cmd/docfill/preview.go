package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docfill/pkg/render"
)

type previewOptions struct {
	fixture string
	demo    bool
	format  string
	output  string
}

func newPreviewCmd(a *app) *cobra.Command {
	opts := &previewOptions{}
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Render the placeholder preview of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPreview(cmd, args[0], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.fixture, "fixture", "", "saved upload response (JSON or YAML) used instead of the backend")
	flags.BoolVar(&opts.demo, "demo", false, "fill every field with its example value first")
	flags.StringVar(&opts.format, "format", render.FormatHTML, "output format: html, fragment or text")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (a *app) runPreview(cmd *cobra.Command, file string, opts *previewOptions) error {
	ctx := cmd.Context()
	formats := render.NewDefaultRegistry()
	renderer, err := formats.Get(opts.format)
	if err != nil {
		return err
	}

	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	manager, _, err := a.manager(client, opts.fixture)
	if err != nil {
		return err
	}
	s, err := a.load(ctx, manager, file)
	if err != nil {
		return err
	}
	if opts.demo {
		s.QuickFillDemo()
	}

	out, err := renderer.Render(ctx, s)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, opts.output, out); err != nil {
		return err
	}
	if opts.output != "" && opts.output != "-" {
		fmt.Fprintln(cmd.ErrOrStderr(), progressLine(s.Stats()))
	}
	return nil
}
