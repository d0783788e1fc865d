package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/slidekit/deck"
	"github.com/hazyhaar/slidekit/ungroup"
)

func ungroupCmd() *cobra.Command {
	var slide int
	cmd := &cobra.Command{
		Use:   "ungroup <input.pptx> [output.pptx]",
		Short: "Flatten text-bearing groups, in place unless an output is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := args[0]
			if len(args) == 2 {
				out = args[1]
			}
			logger := newLogger(logLevel)
			return runUngroup(cmd.OutOrStdout(), logger, args[0], out, slide)
		},
	}
	cmd.Flags().IntVar(&slide, "slide", -1, "0-based slide index (default: every slide)")
	return cmd
}

type slideOutcome struct {
	Index   int    `json:"slide_index"`
	Groups  int    `json:"groups_flattened"`
	Shapes  int    `json:"shapes_extracted"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// runUngroup flattens one slide, or every slide when slide < 0. Slides with
// nested groups are reported as skipped and do not fail the run.
func runUngroup(w io.Writer, logger *slog.Logger, in, out string, slide int) error {
	p, err := deck.Open(in)
	if err != nil {
		return err
	}
	indexes := []int{slide}
	if slide < 0 {
		indexes = indexes[:0]
		for i := range p.SlideCount() {
			indexes = append(indexes, i)
		}
	}

	engine := ungroup.New(logger)
	outcomes := make([]slideOutcome, 0, len(indexes))
	for _, i := range indexes {
		sl, err := p.Slide(i)
		if err != nil {
			return err
		}
		res, err := engine.Flatten(sl)
		o := slideOutcome{Index: i, Groups: res.GroupsFlattened, Shapes: res.ShapesExtracted}
		switch {
		case errors.Is(err, ungroup.ErrNestedGroup):
			o.Skipped = true
			o.Error = err.Error()
		case err != nil:
			return fmt.Errorf("slide %d: %w", i, err)
		}
		outcomes = append(outcomes, o)
	}

	if err := p.Save(out); err != nil {
		return err
	}
	logger.Info("ungroup done", "input", in, "output", out, "slides", len(outcomes))
	return writeJSON(w, outcomes)
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.pptx>",
		Short: "Print the package parts and slide outline as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0])
		},
	}
}

type partInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
}

type slideOutline struct {
	Index  int      `json:"index"`
	Part   string   `json:"part"`
	Layout string   `json:"layout,omitempty"`
	Title  string   `json:"title,omitempty"`
	Shapes []string `json:"shapes"`
	Groups int      `json:"text_groups"`
}

type outline struct {
	Parts  []partInfo     `json:"parts"`
	Slides []slideOutline `json:"slides"`
}

func runInspect(w io.Writer, path string) error {
	p, err := deck.Open(path)
	if err != nil {
		return err
	}
	pkg := p.Package()
	ct, err := pkg.ContentTypes()
	if err != nil {
		return err
	}

	var o outline
	for _, name := range pkg.Parts() {
		t, _ := ct.Lookup(name)
		o.Parts = append(o.Parts, partInfo{Name: name, ContentType: t})
	}
	for i, sl := range p.Slides() {
		so := slideOutline{Index: i, Part: sl.Part(), Shapes: []string{}}
		if l := sl.Layout(); l != nil {
			so.Layout = l.Part()
		}
		if t := sl.Title(); t != nil {
			so.Title = t.Text()
		}
		for _, sh := range sl.Shapes() {
			so.Shapes = append(so.Shapes, fmt.Sprintf("%s:%s", sh.Type(), sh.Name()))
			if ungroup.TextBearing(sh) {
				so.Groups++
			}
		}
		o.Slides = append(o.Slides, so)
	}
	return writeJSON(w, o)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
