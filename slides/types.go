package slides

import "github.com/hazyhaar/slidekit/journal"

// docRef addresses one open presentation.
type docRef struct {
	PresentationID string `json:"presentation_id"`
}

// PresentationHandle lets the journal attribute a call to its document.
func (r docRef) PresentationHandle() string { return r.PresentationID }

type slideRef struct {
	docRef
	SlideIndex int `json:"slide_index"`
}

// --- requests ---

type OpenRequest struct {
	FilePath string `json:"file_path"`
}

type CreateRequest struct {
	Template string `json:"template,omitempty"`
}

type DocRequest struct {
	docRef
}

type SaveRequest struct {
	docRef
	Path string `json:"path,omitempty"`
}

type SlideRequest struct {
	slideRef
}

type AddSlideRequest struct {
	docRef
	LayoutIndex *int `json:"layout_index,omitempty"`
}

type UpdateTextRequest struct {
	slideRef
	ShapeIndex       int      `json:"shape_index"`
	Text             string   `json:"text"`
	FontName         *string  `json:"font_name,omitempty"`
	FontSize         *float64 `json:"font_size,omitempty"`
	Bold             *bool    `json:"bold,omitempty"`
	Italic           *bool    `json:"italic,omitempty"`
	PreserveExisting *bool    `json:"preserve_existing,omitempty"`
}

type UpdateShapeRequest struct {
	slideRef
	ShapeID string   `json:"shape_id"`
	Text    *string  `json:"text,omitempty"`
	Left    *float64 `json:"left,omitempty"`
	Top     *float64 `json:"top,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
}

// Box is a position and size in inches. Nil fields take per-tool defaults.
type Box struct {
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

type AddTextboxRequest struct {
	slideRef
	Box
	Text string `json:"text"`
}

type SetTitleRequest struct {
	slideRef
	Title string `json:"title"`
}

type AddImageRequest struct {
	slideRef
	Box
	ImagePath string `json:"image_path"`
}

type AddTableRequest struct {
	slideRef
	Box
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type TableRequest struct {
	slideRef
	ShapeIndex int `json:"shape_index"`
}

type TableCellRequest struct {
	slideRef
	ShapeIndex int    `json:"shape_index"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Text       string `json:"text"`
}

type AddChartRequest struct {
	slideRef
	Box
	ChartType    string      `json:"chart_type"`
	Categories   []string    `json:"categories"`
	SeriesNames  []string    `json:"series_names"`
	SeriesValues [][]float64 `json:"series_values"`
	HasLegend    *bool       `json:"has_legend,omitempty"`
}

type OperationLogRequest struct {
	PresentationID string `json:"presentation_id,omitempty"`
	Tool           string `json:"tool,omitempty"`
	Status         string `json:"status,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// --- responses ---

type PresentationInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	SlideCount int    `json:"slide_count"`
}

type SlideInfo struct {
	ID         string `json:"id"`
	Index      int    `json:"index"`
	Title      string `json:"title"`
	ShapeCount int    `json:"shape_count"`
}

type ShapeText struct {
	ShapeName string `json:"shape_name"`
	Text      string `json:"text"`
}

type SlideText struct {
	SlideIndex       int                  `json:"slide_index"`
	SlideCount       int                  `json:"slide_count"`
	ShapeCount       int                  `json:"shape_count"`
	HasGroupedShapes bool                 `json:"has_grouped_shapes"`
	Content          map[string]ShapeText `json:"content"`
}

type ShapeInfo struct {
	ID      string  `json:"id"`
	ShapeID int     `json:"shape_id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Text    *string `json:"text,omitempty"`
}

type SlideShapes struct {
	SlideIndex int                  `json:"slide_index"`
	SlideCount int                  `json:"slide_count"`
	ShapeCount int                  `json:"shape_count"`
	Shapes     map[string]ShapeInfo `json:"shapes"`
}

// Status is the plain outcome of a mutating tool.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ShapeAdded struct {
	Success    bool   `json:"success"`
	SlideIndex int    `json:"slide_index"`
	ShapeIndex int    `json:"shape_index"`
	Message    string `json:"message"`
}

type ShapeUpdated struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ShapeID string `json:"shape_id,omitempty"`
}

type Saved struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

type SlideDeleted struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	RemainingSlides int    `json:"remaining_slides"`
}

type LayoutInfo struct {
	Index            int      `json:"index"`
	Name             string   `json:"name"`
	PlaceholderCount int      `json:"placeholder_count"`
	PlaceholderTypes []string `json:"placeholder_types"`
}

type Layouts struct {
	Success     bool         `json:"success"`
	LayoutCount int          `json:"layout_count"`
	Layouts     []LayoutInfo `json:"layouts"`
}

type TableContent struct {
	Success bool       `json:"success"`
	Rows    int        `json:"rows"`
	Columns int        `json:"columns"`
	Data    [][]string `json:"data"`
}

type OperationLog struct {
	Count   int              `json:"count"`
	Entries []*journal.Entry `json:"entries"`
}
