package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ideamans/go-l10n"
	"github.com/spf13/cobra"

	"github.com/ironsheep/piccy-engine/internal/config"
	"github.com/ironsheep/piccy-engine/internal/imaging"
	"github.com/ironsheep/piccy-engine/internal/logger"
	"github.com/ironsheep/piccy-engine/internal/server"
	"github.com/ironsheep/piccy-engine/internal/storage"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

// load builds the effective configuration. --log-level overrides the file
// and environment.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "piccy",
		Short: l10n.T("Inspect and crop still and animated images"),
		Long: l10n.T("piccy inspects, crops and re-encodes PNG, JPEG, GIF, WebP, BMP and TIFF images, " +
			"keeping every frame and frame delay of animations. Without a subcommand it serves " +
			"MCP requests over stdin/stdout."),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", l10n.T("Path to a YAML config file (default $PICCY_CONFIG)"))
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", l10n.T("Log level: debug, info, warn, error or quiet"))

	root.AddCommand(
		newServeCmd(opts),
		newInspectCmd(opts),
		newCropCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: l10n.T("Serve MCP requests over stdin/stdout"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
}

func runServe(opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	// stdout carries the protocol; the logger writes to stderr.
	log := logger.New(cfg.Level())
	if opts.configPath != "" {
		log.Info("Loaded config from %s", opts.configPath)
	}

	srv := server.New(cfg, log, Version)
	return srv.Run()
}

// printer writes labelled, coloured output in the style of a terminal report.
type printer struct {
	w     io.Writer
	title *color.Color
	bold  *color.Color
	ok    *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:     w,
		title: color.New(color.FgCyan, color.Bold),
		bold:  color.New(color.Bold),
		ok:    color.New(color.FgGreen),
	}
}

func (p *printer) header(s string) {
	p.title.Fprintln(p.w, s)
}

// label prints a bold label padded to width followed by a value. Padding is
// applied before styling so columns line up.
func (p *printer) label(width int, label, value string) {
	padded := fmt.Sprintf("%-*s", width, label)
	fmt.Fprintf(p.w, "  %s %s\n", p.bold.Sprint(padded), value)
}

// readImage reads path under the configured byte and pixel limits.
func readImage(cfg config.Config, path string) ([]byte, error) {
	buf, err := imaging.ReadFile(path, cfg.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	if _, err := imaging.CheckLimits(buf, cfg.MaxPixels); err != nil {
		return nil, err
	}
	return buf, nil
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: l10n.T("Print the dimensions, format and animation details of an image"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			buf, err := readImage(cfg, args[0])
			if err != nil {
				return err
			}
			md, err := imaging.Inspect(buf)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(md)
			}
			printMetadata(newPrinter(cmd.OutOrStdout()), args[0], md)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, l10n.T("Print the result as JSON"))
	return cmd
}

func printMetadata(p *printer, path string, md *imaging.Metadata) {
	p.header(l10n.T("IMAGE"))
	p.label(10, l10n.T("File:"), path)
	p.label(10, l10n.T("Format:"), md.Format)
	p.label(10, l10n.T("Size:"), fmt.Sprintf("%dx%d", md.Width, md.Height))
	if !md.IsMultiFrame {
		p.label(10, l10n.T("Frames:"), "1")
		return
	}
	p.label(10, l10n.T("Frames:"), fmt.Sprintf("%d", *md.FrameCount))
	p.label(10, l10n.T("Average:"), l10n.F("%d ms per frame", *md.AverageDuration))
}

// cropFlags are the geometry flags of the crop command.
var cropFlags = []string{"left", "top", "width", "height"}

func newCropCmd(opts *rootOptions) *cobra.Command {
	var (
		rect   imaging.Rect
		region string
		output string
	)

	cmd := &cobra.Command{
		Use:   "crop FILE",
		Short: l10n.T("Crop every frame of an image and write the result"),
		Long: l10n.T("Crop a rectangle (--left --top --width --height) or a named --region from every frame " +
			"of an image. The result keeps the source format and frame delays. Without -o the file is " +
			"written to the configured output directory under a generated name."),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if region == "" && !cmd.Flags().Changed("width") {
				return errors.New(l10n.T("either --region or --left, --top, --width and --height is required"))
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			buf, err := readImage(cfg, args[0])
			if err != nil {
				return err
			}

			var out *imaging.Output
			if region != "" {
				out, err = imaging.CropRegion(buf, region, cfg.EncodeOptions())
			} else {
				out, err = imaging.CropImage(buf, rect, cfg.EncodeOptions())
			}
			if err != nil {
				return err
			}

			res, err := storage.Persist(out.Data, output, cfg.OutputDir)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			p.ok.Fprintln(p.w, l10n.F("Wrote %s", res.Path))
			p.label(10, l10n.T("Format:"), out.Format.String())
			p.label(10, l10n.T("Size:"), fmt.Sprintf("%dx%d", out.Width, out.Height))
			p.label(10, l10n.T("Frames:"), fmt.Sprintf("%d", out.Frames))
			p.label(10, l10n.T("Bytes:"), fmt.Sprintf("%d", res.Bytes))
			return nil
		},
	}

	cmd.Flags().IntVar(&rect.Left, "left", 0, l10n.T("Left edge X coordinate (0-based)"))
	cmd.Flags().IntVar(&rect.Top, "top", 0, l10n.T("Top edge Y coordinate (0-based)"))
	cmd.Flags().IntVar(&rect.Width, "width", 0, l10n.T("Width of the rectangle in pixels"))
	cmd.Flags().IntVar(&rect.Height, "height", 0, l10n.T("Height of the rectangle in pixels"))
	cmd.Flags().StringVar(&region, "region", "", l10n.F("Named region: %v", imaging.Regions))
	cmd.Flags().StringVarP(&output, "output", "o", "", l10n.T("Output file or directory"))

	cmd.MarkFlagsRequiredTogether(cropFlags...)
	for _, f := range cropFlags {
		cmd.MarkFlagsMutuallyExclusive("region", f)
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: l10n.T("Print version information"),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "piccy %s\n", Version)
			fmt.Fprintf(w, "  %s %s\n", l10n.T("Build time:"), BuildTime)
			fmt.Fprintf(w, "  %s %s\n", l10n.T("Git commit:"), GitCommit)
		},
	}
}
