package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/born-ml/hybrid/internal/aggr"
	"github.com/born-ml/hybrid/internal/dense"
	"github.com/born-ml/hybrid/internal/generic"
	"github.com/born-ml/hybrid/internal/operation"
	"github.com/born-ml/hybrid/internal/parallel"
	"github.com/born-ml/hybrid/internal/tensor"
	"github.com/spf13/cobra"
)

// app carries state shared by all commands.
type app struct {
	logLevel string
	logger   *slog.Logger
	cache    *generic.PlanCache
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "hybrid",
		Short:         "Inspect plans of the hybrid sparse/dense tensor engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newVersionCmd(),
		newPlanCmd(a),
		newFoldCmd(a),
		newEncodeCmd(a),
		newInspectCmd(),
		newEvalCmd(a),
	)
	return root
}

func (a *app) setup(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	a.cache = generic.NewPlanCache(a.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hybrid %s\n", version)
		},
	}
}

func newPlanCmd(a *app) *cobra.Command {
	plan := &cobra.Command{
		Use:   "plan",
		Short: "Print execution plans for pairs of tensor types",
	}

	var lhs, rhs, dim string
	concat := &cobra.Command{
		Use:   "concat",
		Short: "Print the plan for concatenating two types along a dimension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, r, err := parseTypes(lhs, rhs)
			if err != nil {
				return err
			}
			p, err := a.cache.Concat(l, r, dim)
			if err != nil {
				return err
			}
			printConcatPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}
	concat.Flags().StringVar(&lhs, "lhs", "", "left operand type")
	concat.Flags().StringVar(&rhs, "rhs", "", "right operand type")
	concat.Flags().StringVar(&dim, "dim", "", "dimension to concatenate along")
	for _, name := range []string{"lhs", "rhs", "dim"} {
		_ = concat.MarkFlagRequired(name)
	}

	var jlhs, jrhs, op, kind string
	var reduce []string
	join := &cobra.Command{
		Use:   "join",
		Short: "Print the plan for joining two types and reducing dimensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, r, err := parseTypes(jlhs, jrhs)
			if err != nil {
				return err
			}
			o, err := operation.Parse(op)
			if err != nil {
				return err
			}
			k, err := aggr.Parse(kind)
			if err != nil {
				return err
			}
			p, err := a.cache.JoinReduce(l, r, o, k, reduce)
			if err != nil {
				return err
			}
			printJoinPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}
	join.Flags().StringVar(&jlhs, "lhs", "", "left operand type")
	join.Flags().StringVar(&jrhs, "rhs", "", "right operand type")
	join.Flags().StringVar(&op, "op", "mul", "binary cell operation")
	join.Flags().StringVar(&kind, "aggr", "sum", "aggregator")
	join.Flags().StringSliceVar(&reduce, "reduce", nil, "dimensions to reduce (default: all)")
	for _, name := range []string{"lhs", "rhs"} {
		_ = join.MarkFlagRequired(name)
	}

	plan.AddCommand(concat, join)
	return plan
}

func newFoldCmd(a *app) *cobra.Command {
	cfg := parallel.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "fold <aggr> <sample>...",
		Short: "Fold samples with an aggregator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := aggr.Parse(args[0])
			if err != nil {
				return err
			}
			samples := make([]float64, 0, len(args)-1)
			for _, s := range args[1:] {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("invalid sample %q: %w", s, err)
				}
				samples = append(samples, v)
			}
			cfg.Enabled = cfg.NumWorkers > 1
			res, err := parallel.Fold(cmd.Context(), kind, samples, cfg)
			if err != nil {
				return err
			}
			a.logger.Debug("folded samples",
				slog.String("aggr", kind.String()),
				slog.Int("samples", len(samples)),
				slog.Int("workers", cfg.NumWorkers))
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(res.Result(), 'g', -1, 64))
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.NumWorkers, "workers", cfg.NumWorkers, "number of worker goroutines")
	cmd.Flags().IntVar(&cfg.MinChunkSize, "min-chunk", cfg.MinChunkSize, "minimum samples per worker")
	return cmd
}

func parseTypes(lhs, rhs string) (tensor.Type, tensor.Type, error) {
	l, err := tensor.ParseType(lhs)
	if err != nil {
		return tensor.Type{}, tensor.Type{}, fmt.Errorf("--lhs: %w", err)
	}
	r, err := tensor.ParseType(rhs)
	if err != nil {
		return tensor.Type{}, tensor.Type{}, fmt.Errorf("--rhs: %w", err)
	}
	return l, r, nil
}

func printConcatPlan(w io.Writer, p *generic.ConcatParam) {
	d := p.DensePlan()
	fmt.Fprintf(w, "result:       %s\n", p.ResultType)
	fmt.Fprintf(w, "sparse:       %s overlap, keys [%s]\n",
		p.SparsePlan().Overlap(), strings.Join(p.SparsePlan().JoinKeys(), ","))
	fmt.Fprintf(w, "output size:  %d\n", d.OutputSize)
	fmt.Fprintf(w, "right offset: %d\n", d.RightOffset)
	printProgram(w, "left", d.Left)
	printProgram(w, "right", d.Right)
}

func printProgram(w io.Writer, name string, p dense.Program) {
	fmt.Fprintf(w, "%s: input %d cells, %d visits\n", name, p.InputSize, p.Visits())
	fmt.Fprintf(w, "  loop count:    %v\n", p.LoopCount)
	fmt.Fprintf(w, "  input stride:  %v\n", p.InputStride)
	fmt.Fprintf(w, "  output stride: %v\n", p.OutputStride)
}

func printJoinPlan(w io.Writer, p *generic.JoinReduceParam) {
	d := p.DensePlan()
	fmt.Fprintf(w, "joined:  %s\n", p.JoinedType)
	fmt.Fprintf(w, "result:  %s\n", p.ResultType)
	fmt.Fprintf(w, "reduce:  %s with %s over [%s]\n", p.Op, p.Aggr, strings.Join(p.Reduce, ","))
	fmt.Fprintf(w, "sparse:  %s overlap, keys [%s], output [%s]\n",
		p.SparsePlan().Overlap(),
		strings.Join(p.SparsePlan().JoinKeys(), ","),
		strings.Join(p.SparsePlan().OutputDims(), ","))
	fmt.Fprintf(w, "dense:   lhs %d, rhs %d, output %d cells\n", d.LHSSize, d.RHSSize, d.OutputSize)
	fmt.Fprintf(w, "  loop count:    %v\n", d.LoopCount)
	fmt.Fprintf(w, "  lhs stride:    %v\n", d.LHSStride)
	fmt.Fprintf(w, "  rhs stride:    %v\n", d.RHSStride)
	fmt.Fprintf(w, "  output stride: %v\n", d.OutputStride)
}
