package slides

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/hazyhaar/slidekit/deck"
	"github.com/hazyhaar/slidekit/journal"
)

// Initialize reports readiness. Documents need no external application.
func (s *Service) Initialize(_ context.Context, _ *DocRequest) (bool, error) {
	return true, nil
}

// ListPresentations describes every open document.
func (s *Service) ListPresentations(_ context.Context, _ *DocRequest) ([]PresentationInfo, error) {
	docs := s.docs.List()
	out := make([]PresentationInfo, 0, len(docs))
	for _, d := range docs {
		d.mu.Lock()
		out = append(out, d.info())
		d.mu.Unlock()
	}
	return out, nil
}

// GetPresentation describes one open document.
func (s *Service) GetPresentation(ctx context.Context, req *DocRequest) (PresentationInfo, error) {
	return withDoc(ctx, s, req.PresentationID, func(d *Document) (PresentationInfo, error) {
		return d.info(), nil
	})
}

// OpenPresentation loads a .pptx file under a new handle.
func (s *Service) OpenPresentation(ctx context.Context, req *OpenRequest) (PresentationInfo, error) {
	if err := ctx.Err(); err != nil {
		return PresentationInfo{}, err
	}
	path, err := s.files.Resolve(req.FilePath)
	if err != nil {
		return PresentationInfo{}, err
	}
	data, err := s.files.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return PresentationInfo{}, fmt.Errorf("File not found: %s", req.FilePath)
	}
	if err != nil {
		return PresentationInfo{}, err
	}
	pres, err := deck.Read(data)
	if err != nil {
		return PresentationInfo{}, fmt.Errorf("open %s: %w", req.FilePath, err)
	}
	d := s.docs.Add(pres, path)
	s.logger.Info("presentation opened", "presentation_id", d.ID, "path", path, "slides", pres.SlideCount())
	return d.info(), nil
}

// CreatePresentation starts a new document, blank or copied from a
// template. It has no path until saved.
func (s *Service) CreatePresentation(ctx context.Context, req *CreateRequest) (PresentationInfo, error) {
	if err := ctx.Err(); err != nil {
		return PresentationInfo{}, err
	}
	var (
		pres *deck.Presentation
		err  error
	)
	if req.Template != "" {
		var data []byte
		data, err = s.files.ReadFile(req.Template)
		if errors.Is(err, fs.ErrNotExist) {
			return PresentationInfo{}, fmt.Errorf("Template not found: %s", req.Template)
		}
		if err == nil {
			pres, err = deck.Read(data)
		}
	} else {
		pres, err = deck.New()
	}
	if err != nil {
		return PresentationInfo{}, failed("creating presentation", err)
	}
	d := s.docs.Add(pres, "")
	s.logger.Info("presentation created", "presentation_id", d.ID, "template", req.Template)
	info := d.info()
	info.Name = "New Presentation"
	return info, nil
}

// SavePresentation writes the document to req.Path, or to where it was
// opened from. A new document needs an explicit path.
func (s *Service) SavePresentation(ctx context.Context, req *SaveRequest) (Saved, error) {
	return withDoc(ctx, s, req.PresentationID, func(d *Document) (Saved, error) {
		target := req.Path
		if target == "" {
			target = d.path
		}
		if target == "" {
			return Saved{}, errors.New("Save path must be specified for new presentations")
		}
		path, err := s.files.Resolve(target)
		if err != nil {
			return Saved{}, err
		}
		if err := d.pres.Save(path); err != nil {
			return Saved{}, err
		}
		d.path = path
		s.logger.Info("presentation saved", "presentation_id", d.ID, "path", path)
		return Saved{Success: true, Path: path}, nil
	})
}

// ClosePresentation forgets the handle. Unsaved changes are lost.
func (s *Service) ClosePresentation(ctx context.Context, req *DocRequest) (Status, error) {
	_, err := withDoc(ctx, s, req.PresentationID, func(d *Document) (struct{}, error) {
		s.docs.Remove(d.ID)
		return struct{}{}, nil
	})
	if err != nil {
		return Status{}, err
	}
	s.logger.Info("presentation closed", "presentation_id", req.PresentationID)
	return Status{Success: true}, nil
}

// GetSlides lists the slides with their titles.
func (s *Service) GetSlides(ctx context.Context, req *DocRequest) ([]SlideInfo, error) {
	return withDoc(ctx, s, req.PresentationID, func(d *Document) ([]SlideInfo, error) {
		out := make([]SlideInfo, 0, d.pres.SlideCount())
		for i, sl := range d.pres.Slides() {
			title := "Untitled Slide"
			if t := sl.Title(); t != nil {
				title = t.Text()
			}
			out = append(out, SlideInfo{
				ID:         strconv.Itoa(i),
				Index:      i,
				Title:      title,
				ShapeCount: sl.Len(),
			})
		}
		return out, nil
	})
}

// GetSlideLayouts lists the layouts new slides can be built from.
func (s *Service) GetSlideLayouts(ctx context.Context, req *DocRequest) (Layouts, error) {
	return withDoc(ctx, s, req.PresentationID, func(d *Document) (Layouts, error) {
		layouts := d.pres.Layouts()
		out := Layouts{Success: true, LayoutCount: len(layouts), Layouts: make([]LayoutInfo, 0, len(layouts))}
		for i, l := range layouts {
			name := l.Name
			if name == "" {
				name = "Layout " + strconv.Itoa(i)
			}
			phs := l.Placeholders()
			types := make([]string, 0, len(phs))
			for _, ph := range phs {
				types = append(types, ph.Type)
			}
			out.Layouts = append(out.Layouts, LayoutInfo{
				Index:            i,
				Name:             name,
				PlaceholderCount: len(phs),
				PlaceholderTypes: types,
			})
		}
		return out, nil
	})
}

// AddSlide appends a slide built from a layout. An out-of-range layout
// index falls back to layout 1, or 0 when the deck has a single layout.
func (s *Service) AddSlide(ctx context.Context, req *AddSlideRequest) (SlideInfo, error) {
	return withDoc(ctx, s, req.PresentationID, func(d *Document) (SlideInfo, error) {
		layouts := d.pres.Layouts()
		if len(layouts) == 0 {
			return SlideInfo{}, errors.New("Error adding slide: presentation has no slide layouts")
		}
		idx := 1
		if req.LayoutIndex != nil {
			idx = *req.LayoutIndex
		}
		if idx < 0 || idx >= len(layouts) {
			idx = 1
		}
		if idx >= len(layouts) {
			idx = 0
		}
		sl, err := d.pres.AddSlide(layouts[idx])
		if err != nil {
			return SlideInfo{}, failed("adding slide", err)
		}
		i := d.pres.SlideCount() - 1
		return SlideInfo{ID: strconv.Itoa(i), Index: i, Title: "New Slide", ShapeCount: sl.Len()}, nil
	})
}

// DeleteSlide removes one slide.
func (s *Service) DeleteSlide(ctx context.Context, req *SlideRequest) (SlideDeleted, error) {
	return withDoc(ctx, s, req.PresentationID, func(d *Document) (SlideDeleted, error) {
		if err := d.pres.DeleteSlide(req.SlideIndex); err != nil {
			return SlideDeleted{}, failed("deleting slide", err)
		}
		return SlideDeleted{
			Success:         true,
			Message:         fmt.Sprintf("Slide at index %d has been deleted", req.SlideIndex),
			RemainingSlides: d.pres.SlideCount(),
		}, nil
	})
}

// OperationLog queries the journal, newest first.
func (s *Service) OperationLog(ctx context.Context, req *OperationLogRequest) (OperationLog, error) {
	if s.journal == nil {
		return OperationLog{}, errors.New("operation journal is not enabled")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.journal.Query(ctx, journal.Filter{
		Tool:           req.Tool,
		PresentationID: req.PresentationID,
		Status:         req.Status,
		Limit:          limit,
	})
	if err != nil {
		return OperationLog{}, err
	}
	return OperationLog{Count: len(entries), Entries: entries}, nil
}
