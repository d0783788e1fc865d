package deck

import (
	"bytes"
	"fmt"

	ppt "github.com/VantageDataChat/GoPPT"
)

// New returns a blank presentation with the default master and layouts and
// no slides.
func New() (*Presentation, error) {
	w, err := ppt.NewWriter(ppt.New(), ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("blank presentation: %w", err)
	}
	pw, ok := w.(*ppt.PPTXWriter)
	if !ok {
		return nil, fmt.Errorf("blank presentation: unexpected writer %T", w)
	}
	var buf bytes.Buffer
	if err := pw.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("blank presentation: %w", err)
	}
	p, err := Read(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("blank presentation: %w", err)
	}
	for p.SlideCount() > 0 {
		if err := p.DeleteSlide(0); err != nil {
			return nil, err
		}
	}
	return p, nil
}
