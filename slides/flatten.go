package slides

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/slidekit/deck"
	"github.com/hazyhaar/slidekit/ungroup"
)

// Messages of ungroup_shapes.
const (
	msgNoTextGroups = "No text-containing groups found in slide"
	msgNestedGroups = "Slide contains complex nested groups. Entire slide skipped."
)

// UngroupShapes flattens every text-bearing group of one slide. A slide
// with a nested group is left untouched.
func (s *Service) UngroupShapes(ctx context.Context, req *SlideRequest) (Status, error) {
	return withSlide(ctx, s, req.slideRef, func(d *Document, sl *deck.Slide) (Status, error) {
		res, err := s.engine.Flatten(sl)
		if errors.Is(err, ungroup.ErrNestedGroup) {
			s.logger.Info("ungroup skipped slide", "presentation_id", d.ID, "slide_index", req.SlideIndex, "error", err)
			return Status{}, errors.New(msgNestedGroups)
		}
		if err != nil {
			return Status{}, fmt.Errorf("Error ungrouping shapes: %w", err)
		}
		if res.GroupsFlattened == 0 {
			return Status{Success: true, Message: msgNoTextGroups}, nil
		}
		s.logger.Info("ungrouped slide",
			"presentation_id", d.ID,
			"slide_index", req.SlideIndex,
			"groups", res.GroupsFlattened,
			"shapes", res.ShapesExtracted,
			"approximated", res.Approximated)
		return Status{
			Success: true,
			Message: fmt.Sprintf("Ungrouped %d text-containing groups, extracted %d shapes", res.GroupsFlattened, res.ShapesExtracted),
		}, nil
	})
}
