package slides

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/slidekit/kit"
)

// RegisterMCP registers every slide tool on srv. get_operation_log is only
// registered when the service has a journal.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	chain := s.middleware()

	register(srv, chain, &mcp.Tool{
		Name:        "initialize_powerpoint",
		Description: "Check that the presentation engine is ready. Always returns true.",
		InputSchema: inputSchema(nil, nil),
	}, s.Initialize)

	register(srv, chain, &mcp.Tool{
		Name:        "get_presentations",
		Description: "List the open presentations with their handles, paths and slide counts.",
		InputSchema: inputSchema(nil, nil),
	}, s.ListPresentations)

	register(srv, chain, &mcp.Tool{
		Name:        "get_presentation",
		Description: "Describe one open presentation.",
		InputSchema: inputSchema(docProps(nil), docRequired()),
	}, s.GetPresentation)

	register(srv, chain, &mcp.Tool{
		Name:        "open_presentation",
		Description: "Open a .pptx file. Returns the presentation_id used by every other tool.",
		InputSchema: inputSchema(map[string]any{
			"file_path": prop("string", "Path to the .pptx file"),
		}, []string{"file_path"}),
	}, s.OpenPresentation)

	register(srv, chain, &mcp.Tool{
		Name:        "create_presentation",
		Description: "Create a new presentation, blank or from a template. Returns its presentation_id.",
		InputSchema: inputSchema(map[string]any{
			"template": prop("string", "Optional path to a template .pptx"),
		}, nil),
	}, s.CreatePresentation)

	register(srv, chain, &mcp.Tool{
		Name:        "save_presentation",
		Description: "Save a presentation. The path is required for presentations that were created, not opened.",
		InputSchema: inputSchema(docProps(map[string]any{
			"path": prop("string", "Target path (default: where it was opened from)"),
		}), docRequired()),
	}, s.SavePresentation)

	register(srv, chain, &mcp.Tool{
		Name:        "close_presentation",
		Description: "Close a presentation. Unsaved changes are discarded.",
		InputSchema: inputSchema(docProps(nil), docRequired()),
	}, s.ClosePresentation)

	register(srv, chain, &mcp.Tool{
		Name:        "get_slides",
		Description: "List the slides of a presentation with their titles and shape counts.",
		InputSchema: inputSchema(docProps(nil), docRequired()),
	}, s.GetSlides)

	register(srv, chain, &mcp.Tool{
		Name:        "get_slide_text",
		Description: "Get the text of every shape on a slide. Check has_grouped_shapes: text inside groups is not listed until the slide is ungrouped.",
		InputSchema: inputSchema(slideProps(nil), slideRequired()),
	}, s.GetSlideText)

	register(srv, chain, &mcp.Tool{
		Name:        "get_slide_shapes",
		Description: "Run this first. Get every shape on a slide with its index, type, position and size in inches. Ungroup grouped shapes before editing them.",
		InputSchema: inputSchema(slideProps(nil), slideRequired()),
	}, s.GetSlideShapes)

	register(srv, chain, &mcp.Tool{
		Name:        "update_text",
		Description: "Replace the text of a shape, optionally setting font, size, bold and italic.",
		InputSchema: inputSchema(slideProps(map[string]any{
			"shape_index":       prop("integer", "Shape index (0-based)"),
			"text":              prop("string", "New text; newlines start new paragraphs"),
			"font_name":         prop("string", "Font name, e.g. Arial"),
			"font_size":         prop("number", "Font size in points"),
			"bold":              prop("boolean", "Bold"),
			"italic":            prop("boolean", "Italic"),
			"preserve_existing": prop("boolean", "Keep the existing formatting where not overridden (default true)"),
		}), slideRequired("shape_index", "text")),
	}, s.UpdateText)

	register(srv, chain, &mcp.Tool{
		Name:        "update_shape_by_id",
		Description: "Update the text, position or size of the shape whose id (index string from get_slide_shapes) is given.",
		InputSchema: inputSchema(slideProps(boxProps(map[string]any{
			"shape_id": prop("string", "Shape id as returned by get_slide_shapes"),
			"text":     prop("string", "New text"),
		})), slideRequired("shape_id")),
	}, s.UpdateShapeByID)

	register(srv, chain, &mcp.Tool{
		Name:        "add_slide",
		Description: "Append a slide built from a layout (see get_slide_layouts).",
		InputSchema: inputSchema(docProps(map[string]any{
			"layout_index": prop("integer", "Layout index (default 1)"),
		}), docRequired()),
	}, s.AddSlide)

	register(srv, chain, &mcp.Tool{
		Name:        "get_slide_layouts",
		Description: "List the slide layouts with their placeholder types.",
		InputSchema: inputSchema(docProps(nil), docRequired()),
	}, s.GetSlideLayouts)

	register(srv, chain, &mcp.Tool{
		Name:        "delete_slide",
		Description: "Delete a slide.",
		InputSchema: inputSchema(slideProps(nil), slideRequired()),
	}, s.DeleteSlide)

	register(srv, chain, &mcp.Tool{
		Name:        "add_textbox",
		Description: "Add a text box (default 1in from the top-left corner, 4x2in).",
		InputSchema: inputSchema(slideProps(boxProps(map[string]any{
			"text": prop("string", "Text content"),
		})), slideRequired("text")),
	}, s.AddTextbox)

	register(srv, chain, &mcp.Tool{
		Name:        "set_slide_title",
		Description: "Set the slide title. Slides without a title placeholder get a title text box.",
		InputSchema: inputSchema(slideProps(map[string]any{
			"title": prop("string", "Title text"),
		}), slideRequired("title")),
	}, s.SetSlideTitle)

	register(srv, chain, &mcp.Tool{
		Name:        "add_image",
		Description: "Add an image. Give width or height alone to keep the aspect ratio.",
		InputSchema: inputSchema(slideProps(boxProps(map[string]any{
			"image_path": prop("string", "Path to a PNG, JPEG, GIF, BMP, TIFF or WebP file"),
		})), slideRequired("image_path")),
	}, s.AddImage)

	register(srv, chain, &mcp.Tool{
		Name:        "add_table",
		Description: "Add an empty table (default 1in from the top-left corner, 8x4in).",
		InputSchema: inputSchema(slideProps(boxProps(map[string]any{
			"rows": prop("integer", "Number of rows"),
			"cols": prop("integer", "Number of columns"),
		})), slideRequired("rows", "cols")),
	}, s.AddTable)

	register(srv, chain, &mcp.Tool{
		Name:        "update_table_cell",
		Description: "Set the text of one table cell.",
		InputSchema: inputSchema(slideProps(map[string]any{
			"shape_index": prop("integer", "Index of the table shape"),
			"row":         prop("integer", "Row index (0-based)"),
			"col":         prop("integer", "Column index (0-based)"),
			"text":        prop("string", "Cell text"),
		}), slideRequired("shape_index", "row", "col", "text")),
	}, s.UpdateTableCell)

	register(srv, chain, &mcp.Tool{
		Name:        "get_table_content",
		Description: "Read every cell of a table.",
		InputSchema: inputSchema(slideProps(map[string]any{
			"shape_index": prop("integer", "Index of the table shape"),
		}), slideRequired("shape_index")),
	}, s.GetTableContent)

	register(srv, chain, &mcp.Tool{
		Name:        "add_chart",
		Description: "Add a chart with its data embedded as a workbook.",
		InputSchema: inputSchema(slideProps(boxProps(map[string]any{
			"chart_type":    map[string]any{"type": "string", "enum": []any{"COLUMN", "LINE", "PIE", "BAR"}, "description": "Chart type (default COLUMN)"},
			"categories":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Category names"},
			"series_names":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Series names"},
			"series_values": map[string]any{"type": "array", "items": map[string]any{"type": "array", "items": map[string]any{"type": "number"}}, "description": "One list of values per series"},
			"has_legend":    prop("boolean", "Show the legend (default true)"),
		})), slideRequired("chart_type", "categories", "series_names", "series_values")),
	}, s.AddChart)

	register(srv, chain, &mcp.Tool{
		Name:        "ungroup_shapes",
		Description: "Ungroup every group that contains text, keeping each shape where it is on the slide. Slides with nested groups are skipped entirely.",
		InputSchema: inputSchema(slideProps(nil), slideRequired()),
	}, s.UngroupShapes)

	if s.journal != nil {
		register(srv, chain, &mcp.Tool{
			Name:        "get_operation_log",
			Description: "Query the journal of tool calls, newest first.",
			InputSchema: inputSchema(map[string]any{
				"presentation_id": prop("string", "Only calls on this presentation"),
				"tool":            prop("string", "Only calls of this tool"),
				"status":          map[string]any{"type": "string", "enum": []any{"success", "error"}},
				"limit":           prop("integer", "Max entries (default 50)"),
			}, nil),
		}, s.OperationLog)
	}
}

// middleware is applied to every tool: logging, journal, panic recovery.
func (s *Service) middleware() kit.Middleware {
	mws := []kit.Middleware{kit.Logging(s.logger)}
	if s.journal != nil {
		mws = append(mws, s.journal.Middleware())
	}
	mws = append(mws, kit.Recovery(s.logger))
	return kit.Chain(mws...)
}

func register[T, R any](srv *mcp.Server, chain kit.Middleware, tool *mcp.Tool, fn func(context.Context, *T) (R, error)) {
	endpoint := func(ctx context.Context, req any) (any, error) {
		return fn(ctx, req.(*T))
	}
	kit.RegisterMCPTool(srv, tool, chain(endpoint), kit.DecodeArgs[T]())
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func docProps(extra map[string]any) map[string]any {
	p := map[string]any{"presentation_id": prop("string", "Handle returned by open_presentation or create_presentation")}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func slideProps(extra map[string]any) map[string]any {
	p := docProps(extra)
	p["slide_index"] = prop("integer", "Slide index (0-based)")
	return p
}

func boxProps(extra map[string]any) map[string]any {
	if extra == nil {
		extra = map[string]any{}
	}
	extra["left"] = prop("number", "Left edge in inches")
	extra["top"] = prop("number", "Top edge in inches")
	extra["width"] = prop("number", "Width in inches")
	extra["height"] = prop("number", "Height in inches")
	return extra
}

func docRequired(extra ...string) []string {
	return append([]string{"presentation_id"}, extra...)
}

func slideRequired(extra ...string) []string {
	return append([]string{"presentation_id", "slide_index"}, extra...)
}
