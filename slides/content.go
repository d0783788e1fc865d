package slides

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hazyhaar/slidekit/deck"
)

// GetSlideText returns the text of every text-capable top-level shape,
// keyed by shape index.
func (s *Service) GetSlideText(ctx context.Context, req *SlideRequest) (SlideText, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (SlideText, error) {
		out := SlideText{
			SlideIndex: req.SlideIndex,
			SlideCount: d.pres.SlideCount(),
			ShapeCount: sl.Len(),
			Content:    map[string]ShapeText{},
		}
		for i, sh := range sl.Shapes() {
			if sh.IsGroup() {
				out.HasGroupedShapes = true
			}
			if sh.HasTextFrame() {
				key := strconv.Itoa(i)
				out.Content[key] = ShapeText{ShapeName: "Shape " + key, Text: sh.Text()}
			}
		}
		return out, nil
	})
}

// GetSlideShapes describes every top-level shape with its geometry in
// inches. Placeholders without their own geometry report the inherited one.
func (s *Service) GetSlideShapes(ctx context.Context, req *SlideRequest) (SlideShapes, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (SlideShapes, error) {
		out := SlideShapes{
			SlideIndex: req.SlideIndex,
			SlideCount: d.pres.SlideCount(),
			ShapeCount: sl.Len(),
			Shapes:     map[string]ShapeInfo{},
		}
		for i, sh := range sl.Shapes() {
			key := strconv.Itoa(i)
			name := sh.Name()
			if name == "" {
				name = "Shape " + key
			}
			info := ShapeInfo{
				ID:      key,
				ShapeID: sh.ID(),
				Name:    name,
				Type:    shapeType(sh),
			}
			t := sl.EffectiveTransform(sh)
			if t.Offset != nil {
				info.Left, info.Top = deck.ToInches(t.Offset.X), deck.ToInches(t.Offset.Y)
			}
			if t.Size != nil {
				info.Width, info.Height = deck.ToInches(t.Size.Width), deck.ToInches(t.Size.Height)
			}
			if sh.HasTextFrame() {
				text := sh.Text()
				info.Text = &text
			}
			out.Shapes[key] = info
		}
		return out, nil
	})
}

func shapeType(sh *deck.Shape) string {
	t := sh.Type()
	if t == deck.TypePlaceholder {
		ph, _ := sh.Placeholder()
		return fmt.Sprintf("Placeholder (%s)", ph.Type)
	}
	return string(t)
}

// UpdateText replaces a shape's text. Font fields override; with
// preserve_existing (the default) unspecified formatting is kept from the
// first run.
func (s *Service) UpdateText(ctx context.Context, req *UpdateTextRequest) (Status, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (Status, error) {
		sh, err := sl.Shape(req.ShapeIndex)
		if err != nil {
			return Status{}, err
		}
		preserve := req.PreserveExisting == nil || *req.PreserveExisting
		font := deck.Font{Name: req.FontName, Size: req.FontSize, Bold: req.Bold, Italic: req.Italic}
		if req.FontName != nil && *req.FontName == "" {
			font.Name = nil
		}
		if req.FontSize != nil && *req.FontSize <= 0 {
			font.Size = nil
		}
		if !sh.ReplaceText(deck.TextEdit{Text: req.Text, Font: font, Preserve: preserve}) {
			return Status{Success: false, Message: "Shape does not contain editable text"}, nil
		}

		var applied []string
		if font.Name != nil {
			applied = append(applied, "font: "+*font.Name)
		}
		if font.Size != nil {
			applied = append(applied, "size: "+strconv.FormatFloat(*font.Size, 'f', -1, 64)+"pt")
		}
		if font.Bold != nil {
			applied = append(applied, "bold: "+strconv.FormatBool(*font.Bold))
		}
		if font.Italic != nil {
			applied = append(applied, "italic: "+strconv.FormatBool(*font.Italic))
		}
		msg := "Text updated successfully"
		switch {
		case len(applied) > 0:
			msg += " with formatting: " + strings.Join(applied, ", ")
		case preserve:
			msg += " with preserved formatting"
		}
		return Status{Success: true, Message: msg}, nil
	})
}

// UpdateShapeByID changes text, position or size of the shape at the
// index given as a numeric string.
func (s *Service) UpdateShapeByID(ctx context.Context, req *UpdateShapeRequest) (ShapeUpdated, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (ShapeUpdated, error) {
		idx, err := strconv.Atoi(req.ShapeID)
		if err != nil {
			return ShapeUpdated{}, fmt.Errorf("Invalid shape ID format: %s. Must be a numeric string.", req.ShapeID)
		}
		if idx < 0 || idx >= sl.Len() {
			return ShapeUpdated{}, fmt.Errorf("Invalid shape ID: %s", req.ShapeID)
		}
		sh, _ := sl.Shape(idx)

		var updated []string
		if req.Text != nil && sh.SetText(*req.Text) {
			updated = append(updated, "text")
		}
		if req.Left != nil || req.Top != nil || req.Width != nil || req.Height != nil {
			eff := sl.EffectiveTransform(sh)
			var off deck.Point
			var size deck.Size
			if eff.Offset != nil {
				off = *eff.Offset
			}
			if eff.Size != nil {
				size = *eff.Size
			}
			if req.Left != nil {
				off.X = deck.Inches(*req.Left)
				updated = append(updated, "left position")
			}
			if req.Top != nil {
				off.Y = deck.Inches(*req.Top)
				updated = append(updated, "top position")
			}
			if req.Width != nil {
				size.Width = deck.Inches(*req.Width)
				updated = append(updated, "width")
			}
			if req.Height != nil {
				size.Height = deck.Inches(*req.Height)
				updated = append(updated, "height")
			}
			sh.Transform.Offset = &off
			sh.Transform.Size = &size
		}
		if len(updated) == 0 {
			return ShapeUpdated{Success: false, Message: "No updates were specified or applicable to this shape type"}, nil
		}
		return ShapeUpdated{
			Success: true,
			Message: "Shape updated successfully. Updated: " + strings.Join(updated, ", "),
			ShapeID: req.ShapeID,
		}, nil
	})
}

// AddTextbox appends a text box. Defaults: 1in from the top-left corner,
// 4x2in.
func (s *Service) AddTextbox(ctx context.Context, req *AddTextboxRequest) (ShapeAdded, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (ShapeAdded, error) {
		off := deck.Point{X: inches(req.Left, 1), Y: inches(req.Top, 1)}
		size := deck.Size{Width: inches(req.Width, 4), Height: inches(req.Height, 2)}
		sl.AddTextBox(req.Text, off, size)
		return added(req.SlideIndex, sl, "Text box added successfully"), nil
	})
}

const titleSize = 44

// SetSlideTitle writes the title placeholder, or adds a 44pt bold text box
// at the top of a slide without one.
func (s *Service) SetSlideTitle(ctx context.Context, req *SetTitleRequest) (Status, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (Status, error) {
		if t := sl.Title(); t != nil {
			t.SetText(req.Title)
		} else {
			box := sl.AddTextBox("", deck.Point{X: deck.Inches(1), Y: deck.Inches(0.5)}, deck.Size{Width: deck.Inches(8), Height: deck.Inches(1)})
			size, bold := float64(titleSize), true
			box.ReplaceText(deck.TextEdit{Text: req.Title, Font: deck.Font{Size: &size, Bold: &bold}})
		}
		return Status{Success: true, Message: "Slide title has been set"}, nil
	})
}

// AddImage places an image file on the slide. With only one of width and
// height the other follows the image aspect ratio; with neither the image
// keeps its native size.
func (s *Service) AddImage(ctx context.Context, req *AddImageRequest) (ShapeAdded, error) {
	path, err := s.files.Resolve(req.ImagePath)
	if err != nil {
		return ShapeAdded{}, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ShapeAdded{}, fmt.Errorf("Image file not found: %s", req.ImagePath)
	}
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (ShapeAdded, error) {
		data, err := s.files.ReadFile(path)
		if err != nil {
			return ShapeAdded{}, failed("adding image", err)
		}
		off := deck.Point{X: inches(req.Left, 1), Y: inches(req.Top, 1)}
		if _, err := sl.AddPicture(data, filepath.Base(path), off, optInches(req.Width), optInches(req.Height)); err != nil {
			return ShapeAdded{}, failed("adding image", err)
		}
		return added(req.SlideIndex, sl, "Image added successfully"), nil
	})
}

// AddTable appends an empty table. Defaults: 1in from the top-left corner,
// 8x4in.
func (s *Service) AddTable(ctx context.Context, req *AddTableRequest) (ShapeAdded, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (ShapeAdded, error) {
		off := deck.Point{X: inches(req.Left, 1), Y: inches(req.Top, 1)}
		size := deck.Size{Width: inches(req.Width, 8), Height: inches(req.Height, 4)}
		if _, err := sl.AddTable(req.Rows, req.Cols, off, size); err != nil {
			return ShapeAdded{}, failed("adding table", err)
		}
		return added(req.SlideIndex, sl, "Table added successfully"), nil
	})
}

func table(sl *deck.Slide, index int) (*deck.Table, error) {
	sh, err := sl.Shape(index)
	if err != nil {
		return nil, err
	}
	t, ok := sh.Table()
	if !ok {
		return nil, errors.New("Shape is not a table")
	}
	return t, nil
}

// UpdateTableCell replaces the text of one cell.
func (s *Service) UpdateTableCell(ctx context.Context, req *TableCellRequest) (Status, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (Status, error) {
		t, err := table(sl, req.ShapeIndex)
		if err != nil {
			return Status{}, err
		}
		if err := t.SetCellText(req.Row, req.Col, req.Text); err != nil {
			return Status{}, failed("updating table cell", err)
		}
		return Status{Success: true, Message: "Table cell updated successfully"}, nil
	})
}

// GetTableContent returns every cell of a table, row by row.
func (s *Service) GetTableContent(ctx context.Context, req *TableRequest) (TableContent, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (TableContent, error) {
		t, err := table(sl, req.ShapeIndex)
		if err != nil {
			return TableContent{}, err
		}
		return TableContent{Success: true, Rows: t.Rows(), Columns: t.Cols(), Data: t.Data()}, nil
	})
}

// AddChart appends a chart. Series names and values are paired in order;
// extra entries on either side are ignored. Unknown chart types draw a
// clustered column chart.
func (s *Service) AddChart(ctx context.Context, req *AddChartRequest) (ShapeAdded, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (ShapeAdded, error) {
		data := deck.ChartData{Categories: req.Categories}
		for i, name := range req.SeriesNames {
			if i >= len(req.SeriesValues) {
				break
			}
			data.Series = append(data.Series, deck.Series{Name: name, Values: req.SeriesValues[i]})
		}
		off := deck.Point{X: inches(req.Left, 1), Y: inches(req.Top, 1)}
		size := deck.Size{Width: inches(req.Width, 8), Height: inches(req.Height, 4)}
		legend := req.HasLegend == nil || *req.HasLegend
		if _, err := sl.AddChart(deck.ParseChartKind(req.ChartType), data, off, size, legend); err != nil {
			return ShapeAdded{}, failed("adding chart", err)
		}
		return added(req.SlideIndex, sl, "Chart added successfully"), nil
	})
}

func added(slideIndex int, sl *deck.Slide, msg string) ShapeAdded {
	return ShapeAdded{Success: true, SlideIndex: slideIndex, ShapeIndex: sl.Len() - 1, Message: msg}
}
