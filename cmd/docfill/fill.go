package main

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-docfill/pkg/collab"
	"github.com/goliatone/go-docfill/pkg/prompt"
	"github.com/goliatone/go-docfill/pkg/session"
)

type fillOptions struct {
	fixture string
	preview string
	export  bool
	outDir  string
	format  string
}

func newFillCmd(a *app) *cobra.Command {
	opts := &fillOptions{}
	cmd := &cobra.Command{
		Use:   "fill FILE",
		Short: "Fill a document interactively",
		Long: `Upload FILE, answer one prompt per placeholder and print the collected
values. Leave an answer blank to stop early. With --export the filled
document is generated by the backend and downloaded into --out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFill(cmd, args[0], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.fixture, "fixture", "", "saved upload response (JSON or YAML) used instead of the backend")
	flags.StringVar(&opts.preview, "preview", "", "write the filled HTML preview page to this file")
	flags.BoolVar(&opts.export, "export", false, "export and download the filled document")
	flags.StringVar(&opts.outDir, "out", ".", "directory for downloaded files")
	flags.StringVar(&opts.format, "format", string(prompt.OutputFormatPrettyText), "value output format: json, form or pretty")
	return cmd
}

func (a *app) runFill(cmd *cobra.Command, file string, opts *fillOptions) error {
	ctx := cmd.Context()
	format := prompt.OutputFormat(opts.format)
	switch format {
	case prompt.OutputFormatJSON, prompt.OutputFormatFormURLEncoded, prompt.OutputFormatPrettyText:
	default:
		return fmt.Errorf("%w: %q", prompt.ErrUnknownFormat, opts.format)
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

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(s.Document().Name))

	driver := a.driver
	if driver == nil {
		driver = prompt.NewSurveyDriver(out)
	}
	runner := prompt.New(
		prompt.WithPromptDriver(driver),
		prompt.WithRealtimePacing(a.driver == nil),
	)
	stats, err := runner.Run(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, progressLine(stats))

	payload, err := prompt.Serialize(s.Store().Snapshot(), format)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(payload))

	if opts.preview != "" {
		page, err := s.PreviewPage()
		if err != nil {
			return err
		}
		if err := writeOutput(cmd, opts.preview, []byte(page)); err != nil {
			return err
		}
		fmt.Fprintln(out, mutedStyle.Render("preview written to "+opts.preview))
	}

	if !opts.export {
		return nil
	}
	return a.exportAndDownload(cmd, manager, client, opts.outDir)
}

func (a *app) exportAndDownload(cmd *cobra.Command, manager *session.Manager, client *collab.HTTPClient, outDir string) error {
	ctx := cmd.Context()
	result, err := manager.Export(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for _, location := range []string{result.FilledDocxURL, result.FilledPDFURL} {
		if location == "" {
			continue
		}
		target := filepath.Join(outDir, downloadName(location))
		f, err := os.Create(target)
		if err != nil {
			return err
		}
		n, err := client.Download(ctx, location, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(target)
			return err
		}
		a.logger.Info("downloaded", zap.String("file", target), zap.Int64("bytes", n))
		fmt.Fprintln(cmd.OutOrStdout(), filledStyle.Render("saved "+target))
	}
	return nil
}

// downloadName picks a local file name for a collaborator URL or path.
func downloadName(location string) string {
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		location = u.Path
	}
	name := path.Base(location)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}
