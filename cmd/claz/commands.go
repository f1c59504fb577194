package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cla"
	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/codec"
	"github.com/hupe1980/cla/compress"
	"github.com/hupe1980/cla/format"
	"github.com/hupe1980/cla/internal/simd"
	"github.com/hupe1980/cla/resource"
)

type compressFlags struct {
	output      string
	groups      string
	schemes     string
	block       string
	zero        string
	parallelism int
	header      bool
	ioLimit     int64
	logLevel    string
	report      bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "claz",
		Short: "claz - column-group compression for numeric matrices",
		Long: `claz compresses numeric CSV matrices column-wise into a cla container file
and reports how each column group was encoded.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "claz v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			isa := simd.ActiveISA().String()
			if simd.IsOverridden() {
				isa += " (CLA_SIMD)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "SIMD: %s\n", isa)
		},
	})
	root.AddCommand(newCompressCmd(), newInspectCmd())
	return root
}

func newCompressCmd() *cobra.Command {
	var f compressFlags
	cmd := &cobra.Command{
		Use:   "compress <input.csv>",
		Short: "Compress a CSV matrix into a container file",
		Long: `Compress reads a CSV file of numbers (one matrix row per line) and writes the
compressed matrix to a container file.

Example:
  claz compress data.csv -o data.cla --groups "0,1;2,3" --block zstd`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(cmd, args[0], &f)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Path of the container file (required)")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().StringVar(&f.groups, "groups", "", `Candidate column sets, e.g. "0,1;2,3" (default: one per column)`)
	cmd.Flags().StringVar(&f.schemes, "schemes", "ddc,rle,ole", "Encodings the compressor may choose")
	cmd.Flags().StringVar(&f.block, "block", "lz4", "Block compression of the container (none, lz4, zstd)")
	cmd.Flags().StringVar(&f.zero, "zero", "implicit", "All-zero tuple representation (implicit, explicit)")
	cmd.Flags().IntVar(&f.parallelism, "parallelism", runtime.GOMAXPROCS(0), "Candidate sets compressed concurrently")
	cmd.Flags().BoolVar(&f.header, "header", false, "Skip the first CSV line")
	cmd.Flags().Int64Var(&f.ioLimit, "io-limit", 0, "Write throughput limit in bytes per second (0 = unlimited)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "error", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&f.report, "report", false, "Print the compression report as JSON")
	return cmd
}

func runCompress(cmd *cobra.Command, input string, f *compressFlags) error {
	opts, err := f.options()
	if err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", input, err)
	}
	defer in.Close()

	src, err := readCSV(in, f.header)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", input, err)
	}

	m, err := cla.Compress(cmd.Context(), src, opts...)
	if err != nil {
		return err
	}

	if err := m.Save(cmd.Context(), f.output); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.output, err)
	}
	fi, err := os.Stat(f.output)
	if err != nil {
		return err
	}

	rows, cols := m.Dims()
	fmt.Fprintf(cmd.OutOrStdout(), "%dx%d matrix, %d groups, ratio %.2f, %d bytes written\n",
		rows, cols, len(m.Groups()), m.CompressionRatio(), fi.Size())
	if f.report {
		return printReport(cmd.OutOrStdout(), codec.Default, m.Report())
	}
	return nil
}

func (f *compressFlags) options() ([]cla.Option, error) {
	set, err := compress.ParseSchemeSet(f.schemes)
	if err != nil {
		return nil, err
	}
	ct, err := format.ParseCompressionType(f.block)
	if err != nil {
		return nil, err
	}
	var zero bitmap.ZeroPolicy
	switch f.zero {
	case "implicit":
		zero = bitmap.ZeroImplicit
	case "explicit":
		zero = bitmap.ZeroExplicit
	default:
		return nil, fmt.Errorf("%w: unknown zero policy %q", cla.ErrInvalidArgument, f.zero)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", cla.ErrInvalidArgument, f.logLevel)
	}

	opts := []cla.Option{
		cla.WithSchemes(set.Has(compress.EnableDDC), set.Has(compress.EnableRLE), set.Has(compress.EnableOLE)),
		cla.WithBlockCompression(ct),
		cla.WithZeroTuple(zero),
		cla.WithParallelism(f.parallelism),
		cla.WithLogLevel(level),
	}
	if f.groups != "" {
		groups, err := parseGroups(f.groups)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cla.WithColumnGroups(groups))
	}
	if f.ioLimit > 0 {
		opts = append(opts, cla.WithResourceController(resource.NewController(resource.Config{
			MaxWorkers:         int64(max(f.parallelism, 1)),
			IOLimitBytesPerSec: f.ioLimit,
		})))
	}
	return opts, nil
}

// parseGroups parses "0,1;2,3" into [[0 1] [2 3]].
func parseGroups(s string) ([][]int, error) {
	var groups [][]int
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var cols []int
		for _, field := range strings.Split(part, ",") {
			c, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("%w: column %q", cla.ErrInvalidArgument, field)
			}
			cols = append(cols, c)
		}
		groups = append(groups, cols)
	}
	return groups, nil
}

func newInspectCmd() *cobra.Command {
	var (
		codecName string
		indent    bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file.cla>",
		Short: "Print the report of a container file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := codec.ByName(codecName)
			if !ok {
				return fmt.Errorf("%w: unknown codec %q (one of %s)",
					cla.ErrInvalidArgument, codecName, strings.Join(codec.Names(), ", "))
			}
			m, err := cla.Open(cmd.Context(), args[0], cla.WithCodec(c))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if indent {
				return printReport(cmd.OutOrStdout(), c, m.Report())
			}
			data, err := m.MarshalReport()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&codecName, "codec", "go-json", "Report codec")
	cmd.Flags().BoolVar(&indent, "indent", false, "Indent the report")
	return cmd
}

func printReport(w io.Writer, c codec.Codec, r cla.Report) error {
	data, err := c.MarshalIndent(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
