package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/born-ml/hybrid/internal/aggr"
	"github.com/born-ml/hybrid/internal/operation"
	"github.com/born-ml/hybrid/internal/serialization"
	"github.com/born-ml/hybrid/internal/tensor"
	"github.com/spf13/cobra"
)

func newEncodeCmd(a *app) *cobra.Command {
	var typ, out string
	cmd := &cobra.Command{
		Use:   "encode <subspace>...",
		Short: "Write a value file from subspaces given as labels=cells",
		Long: `Write a value file. Each argument is one subspace: comma separated
labels, an equals sign and comma separated cells, e.g. "a,p=1,2,3".
Dense types take a single argument with the cells only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tensor.ParseType(typ)
			if err != nil {
				return fmt.Errorf("--type: %w", err)
			}
			subs := make([]tensor.Subspace, 0, len(args))
			for _, arg := range args {
				s, err := parseSubspace(arg)
				if err != nil {
					return err
				}
				subs = append(subs, s)
			}
			v, err := tensor.FromSubspaces(t, subs...)
			if err != nil {
				return err
			}
			if err := serialization.SaveFile(out, v, nil); err != nil {
				return err
			}
			a.logger.Debug("wrote value",
				slog.String("path", out),
				slog.String("type", t.String()),
				slog.Int("subspaces", v.NumSubspaces()))
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "tensor type")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func parseSubspace(arg string) (tensor.Subspace, error) {
	var s tensor.Subspace
	labels, cells, found := strings.Cut(arg, "=")
	if !found {
		labels, cells = "", arg
	}
	if labels != "" {
		s.Labels = strings.Split(labels, ",")
	}
	if cells == "" {
		return s, nil
	}
	for _, c := range strings.Split(cells, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return s, fmt.Errorf("invalid cell %q in %q: %w", c, arg, err)
		}
		s.Cells = append(s.Cells, f)
	}
	return s, nil
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the type and subspaces of a value file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, header, err := serialization.LoadFile(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "type:      %s\n", v.Type())
			fmt.Fprintf(w, "created:   %s by %s\n", header.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), header.HybridVersion)
			fmt.Fprintf(w, "subspaces: %d\n", v.NumSubspaces())
			printBlocks(w, v)
			return nil
		},
	}
}

func printBlocks(w io.Writer, v *tensor.Value) {
	blocks := v.Blocks()
	keys := make([]string, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cells := make([]string, len(blocks[k]))
		for i, c := range blocks[k] {
			cells[i] = strconv.FormatFloat(c, 'g', -1, 64)
		}
		fmt.Fprintf(w, "  %s: [%s]\n", k, strings.Join(cells, " "))
	}
}

func newEvalCmd(a *app) *cobra.Command {
	eval := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a generic operation on value files",
	}

	var lhs, rhs, dim, out string
	concat := &cobra.Command{
		Use:   "concat",
		Short: "Concatenate two values along a dimension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, r, err := loadPair(lhs, rhs)
			if err != nil {
				return err
			}
			p, err := a.cache.Concat(l.Type(), r.Type(), dim)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), p.Apply(l, r), out)
		},
	}
	concat.Flags().StringVar(&lhs, "lhs", "", "left operand file")
	concat.Flags().StringVar(&rhs, "rhs", "", "right operand file")
	concat.Flags().StringVar(&dim, "dim", "", "dimension to concatenate along")
	concat.Flags().StringVarP(&out, "out", "o", "", "write the result to this file instead of printing it")
	for _, name := range []string{"lhs", "rhs", "dim"} {
		_ = concat.MarkFlagRequired(name)
	}

	var jlhs, jrhs, op, kind, jout string
	var reduce []string
	join := &cobra.Command{
		Use:   "join",
		Short: "Join two values and reduce dimensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, r, err := loadPair(jlhs, jrhs)
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
			p, err := a.cache.JoinReduce(l.Type(), r.Type(), o, k, reduce)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), p.Apply(l, r), jout)
		},
	}
	join.Flags().StringVar(&jlhs, "lhs", "", "left operand file")
	join.Flags().StringVar(&jrhs, "rhs", "", "right operand file")
	join.Flags().StringVar(&op, "op", "mul", "binary cell operation")
	join.Flags().StringVar(&kind, "aggr", "sum", "aggregator")
	join.Flags().StringSliceVar(&reduce, "reduce", nil, "dimensions to reduce (default: all)")
	join.Flags().StringVarP(&jout, "out", "o", "", "write the result to this file instead of printing it")
	for _, name := range []string{"lhs", "rhs"} {
		_ = join.MarkFlagRequired(name)
	}

	eval.AddCommand(concat, join)
	return eval
}

func loadPair(lhs, rhs string) (*tensor.Value, *tensor.Value, error) {
	l, _, err := serialization.LoadFile(lhs)
	if err != nil {
		return nil, nil, fmt.Errorf("--lhs: %w", err)
	}
	r, _, err := serialization.LoadFile(rhs)
	if err != nil {
		return nil, nil, fmt.Errorf("--rhs: %w", err)
	}
	return l, r, nil
}

func (a *app) emit(w io.Writer, v *tensor.Value, out string) error {
	if out != "" {
		if err := serialization.SaveFile(out, v, nil); err != nil {
			return err
		}
		a.logger.Debug("wrote result", slog.String("path", out), slog.String("type", v.Type().String()))
		return nil
	}
	fmt.Fprintf(w, "type: %s\n", v.Type())
	printBlocks(w, v)
	return nil
}
