package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/govkit/internal/config"
	"github.com/zjrosen/govkit/internal/domain/check"
	"github.com/zjrosen/govkit/internal/manifest"
	"github.com/zjrosen/govkit/internal/tracing"
)

type manifestOptions struct {
	governance bool
	unitID     string
	output     string
	check      bool
	publish    bool
}

func newGenerateManifestCmd(c *cli) *cobra.Command {
	var opts manifestOptions

	cmd := &cobra.Command{
		Use:   "generate-manifest",
		Short: "Generate or check a SHA-256 content manifest",
		Long: `Generate a deterministic SHA-256 manifest of the governance directory
(--governance) or of one registered unit (--unit). With --check the manifest
is regenerated and compared to the stored copy, ignoring generated_at; any
difference fails the command and is printed as a line diff. With --publish
the written manifest is also uploaded to the bucket configured under
"publish".

Examples:
  govkit generate-manifest --governance
  govkit generate-manifest --unit standards/core --check
  govkit generate-manifest --governance --publish`,
		Args: cobra.NoArgs,
		RunE: c.action(func(cmd *cobra.Command, _ []string, e *env) error {
			return e.run(cmd.Context(), "generate-manifest", func(ctx context.Context) (tracing.Outcome, error) {
				return runGenerateManifest(ctx, e, opts)
			})
		}),
	}

	f := cmd.Flags()
	f.BoolVar(&opts.governance, "governance", false, "manifest specs/_governance")
	f.StringVar(&opts.unitID, "unit", "", "manifest the registered unit with this id")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: under manifest.output_dir)")
	f.BoolVar(&opts.check, "check", false, "compare against the stored manifest instead of writing")
	f.BoolVar(&opts.publish, "publish", false, "upload the manifest to the configured bucket")
	cmd.MarkFlagsMutuallyExclusive("governance", "unit")
	cmd.MarkFlagsMutuallyExclusive("check", "publish")
	return cmd
}

func runGenerateManifest(ctx context.Context, e *env, opts manifestOptions) (tracing.Outcome, error) {
	var publisher *manifest.Publisher
	if opts.publish {
		if err := config.ValidatePublish(e.cfg.Publish); err != nil {
			return tracing.Outcome{}, err
		}
		pc := e.cfg.Publish
		var err error
		publisher, err = manifest.NewPublisher(manifest.PublishConfig{
			Endpoint:  pc.Endpoint,
			Region:    pc.Region,
			Bucket:    pc.Bucket,
			AccessKey: pc.AccessKey,
			SecretKey: pc.SecretKey,
			UseSSL:    pc.UseSSL,
			Prefix:    pc.Prefix,
		})
		if err != nil {
			return tracing.Outcome{}, err
		}
	}

	builder := manifest.NewBuilder(e.fsys,
		manifest.WithGenerator(e.cfg.Manifest.Generator),
		manifest.WithClock(e.now),
	)
	svc := manifest.NewService(e.root, builder, e.cfg.Manifest.OutputDir, e.cfg.RegistryPath)

	out, err := svc.Run(manifest.Request{
		Governance: opts.governance,
		UnitID:     opts.unitID,
		Output:     opts.output,
		Check:      opts.check,
	})

	p := e.printer
	switch {
	case errors.Is(err, manifest.ErrManifestDrift):
		p.Status(check.StatusFail, "Manifest drift detected!")
		p.Printf("Path: %s", out.OutputPath)
		p.Messages(out.Diff)
		msgs := append([]string{err.Error()}, out.Diff...)
		return tracing.Outcome{Messages: msgs}, err
	case err != nil:
		return tracing.Outcome{}, err
	case opts.check:
		p.Status(check.StatusPass, "Manifest up-to-date: "+out.OutputPath)
		p.Printf("Files: %d", out.Manifest.FileCount)
		return tracing.Outcome{Passed: true}, nil
	}

	p.Printf("Generated: %s", out.OutputPath)
	p.Printf("Files: %d", out.Manifest.FileCount)

	if publisher != nil {
		key, err := publisher.Publish(ctx, out.Name, out.Content)
		if err != nil {
			return tracing.Outcome{Messages: []string{err.Error()}}, fmt.Errorf("publishing manifest: %w", err)
		}
		p.Printf("Published: s3://%s/%s", e.cfg.Publish.Bucket, key)
	}
	return tracing.Outcome{Passed: true}, nil
}
