package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/effects"
	"github.com/starford/postframe/internal/imagesrc"
	"github.com/starford/postframe/internal/models"
)

func (s *Server) registerEditTools() {
	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Return the current document, its asset files and the undo/redo state."),
	), s.getDocument)

	s.mcp.AddTool(mcp.NewTool("add_text",
		mcp.WithDescription("Add a text element."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text content")),
		mcp.WithNumber("x", mcp.Description("Left position in canvas pixels")),
		mcp.WithNumber("y", mcp.Description("Top position in canvas pixels")),
		mcp.WithNumber("fontSize", mcp.Description("Font size in pixels")),
		mcp.WithString("color", mcp.Description("CSS text color")),
		mcp.WithString("category", mcp.Description("Optional text role, e.g. heading or caption")),
	), s.addText)

	s.mcp.AddTool(mcp.NewTool("add_shape",
		mcp.WithDescription("Add a vector shape drawn from a mask outline (see list_masks)."),
		mcp.WithString("mask", mcp.Required(), mcp.Description("Mask id")),
		mcp.WithNumber("x", mcp.Description("Left position")),
		mcp.WithNumber("y", mcp.Description("Top position")),
		mcp.WithNumber("width", mcp.Required(), mcp.Description("Width")),
		mcp.WithNumber("height", mcp.Required(), mcp.Description("Height")),
		mcp.WithString("fill", mcp.Description("CSS fill color")),
	), s.addShape)

	s.mcp.AddTool(mcp.NewTool("add_image",
		mcp.WithDescription("Add an image element from an http(s) URL or a base64 data URI. "+
			"The bytes are stored with the document."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data URI")),
		mcp.WithNumber("x", mcp.Description("Left position")),
		mcp.WithNumber("y", mcp.Description("Top position")),
		mcp.WithNumber("width", mcp.Description("Width (defaults to the image width)")),
		mcp.WithNumber("height", mcp.Description("Height (defaults to the image height)")),
	), s.addImage)

	s.mcp.AddTool(mcp.NewTool("update_element",
		mcp.WithDescription("Move, resize, restack or retext an element. Omitted fields are unchanged."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
		mcp.WithNumber("x", mcp.Description("New left position")),
		mcp.WithNumber("y", mcp.Description("New top position")),
		mcp.WithNumber("width", mcp.Description("New width")),
		mcp.WithNumber("height", mcp.Description("New height")),
		mcp.WithNumber("zIndex", mcp.Description("New stacking order")),
		mcp.WithString("text", mcp.Description("New text (text elements only)")),
		mcp.WithBoolean("visible", mcp.Description("Show or hide the element")),
		mcp.WithBoolean("locked", mcp.Description("Lock or unlock the element")),
	), s.updateElement)

	s.mcp.AddTool(mcp.NewTool("remove_element",
		mcp.WithDescription("Remove an element and its layer."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
	), s.removeElement)

	s.mcp.AddTool(mcp.NewTool("duplicate_element",
		mcp.WithDescription("Copy an element, offset slightly, on top of the stack."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
	), s.duplicateElement)

	s.mcp.AddTool(mcp.NewTool("set_effect",
		mcp.WithDescription("Edit one effect of an element. Out-of-range values are clamped and reported."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element id")),
		mcp.WithString("effect", mcp.Required(), mcp.Description("Effect name"),
			mcp.Enum("blur", "brightness", "sepia", "grayscale", "border", "cornerRadius", "shadow")),
		mcp.WithBoolean("enabled", mcp.Description("Enable or disable the effect")),
		mcp.WithString("param", mcp.Description("Numeric parameter name (value, blur, offsetX, offsetY, opacity)")),
		mcp.WithNumber("value", mcp.Description("Parameter value")),
		mcp.WithString("color", mcp.Description("Color for border or shadow")),
	), s.setEffect)

	s.mcp.AddTool(mcp.NewTool("apply_mask",
		mcp.WithDescription("Clip an image element to a mask outline. Unknown masks fall back to circle."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Image element id")),
		mcp.WithString("mask", mcp.Required(), mcp.Description("Mask id")),
	), s.applyMask)

	s.mcp.AddTool(mcp.NewTool("remove_mask",
		mcp.WithDescription("Restore the unmasked image."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Image element id")),
	), s.removeMask)

	s.mcp.AddTool(mcp.NewTool("list_masks",
		mcp.WithDescription("List the mask ids usable by apply_mask and add_shape."),
	), s.listMasks)

	s.mcp.AddTool(mcp.NewTool("set_canvas",
		mcp.WithDescription("Resize the canvas by preset ratio or explicit size."),
		mcp.WithString("ratio", mcp.Description("Preset ratio: 1:1, 4:5, 9:16, 16:9 or 1.91:1")),
		mcp.WithNumber("width", mcp.Description("Width in pixels (with height, instead of ratio)")),
		mcp.WithNumber("height", mcp.Description("Height in pixels")),
	), s.setCanvas)

	s.mcp.AddTool(mcp.NewTool("set_background",
		mcp.WithDescription("Set the canvas background, or clear it with type none."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Background type"),
			mcp.Enum("color", "gradient", "image", "video", "none")),
		mcp.WithString("value", mcp.Description("Color, CSS gradient or media URL")),
	), s.setBackground)

	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last edit."),
	), s.undo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone edit."),
	), s.redo)

	s.mcp.AddTool(mcp.NewTool("clear_editor",
		mcp.WithDescription("Reset to an empty default canvas. Can be undone."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.clearEditor)
}

func boolPtr(v bool) *bool { return &v }

func errElement(id string) error {
	return fmt.Errorf("%w: element %s", apperr.ErrNotFound, id)
}

func (s *Server) getDocument(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.edit(func(*editor.Session) (string, error) { return "", nil })
}

func (s *Server) addText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	styles := models.StyleMap{}
	if size := getFloat(args, "fontSize", 0); size > 0 {
		styles["fontSize"] = fmt.Sprintf("%gpx", size)
	}
	if color := req.GetString("color", ""); color != "" {
		styles["color"] = color
	}
	partial := models.Element{
		Type:     models.ElementText,
		Position: models.Position{X: getFloat(args, "x", 0), Y: getFloat(args, "y", 0)},
		Styles:   styles,
		Props:    models.Props{Text: text, Category: req.GetString("category", "")},
	}
	return s.edit(func(se *editor.Session) (string, error) {
		el, err := se.AddElement(partial)
		return el.ID, err
	})
}

func (s *Server) addShape(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mask, err := req.RequireString("mask")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	size := models.Size{Width: getFloat(args, "width", 0), Height: getFloat(args, "height", 0)}
	pos := models.Position{X: getFloat(args, "x", 0), Y: getFloat(args, "y", 0)}
	var styles models.StyleMap
	if fill := req.GetString("fill", ""); fill != "" {
		styles = models.StyleMap{"fill": fill}
	}
	return s.edit(func(se *editor.Session) (string, error) {
		el, err := se.AddShape(mask, pos, size, styles)
		return el.ID, err
	})
}

func (s *Server) addImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, mime, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sniffed := imagesrc.DetectMIME(data); strings.HasPrefix(sniffed, "image/") {
		mime = sniffed
	}
	if !strings.HasPrefix(mime, "image/") {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported media type: %s", mime)), nil
	}

	args := req.GetArguments()
	size := models.Size{Width: getFloat(args, "width", 0), Height: getFloat(args, "height", 0)}
	if size.Width <= 0 || size.Height <= 0 {
		img, err := imagesrc.Decode(data)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b := img.Bounds()
		size = models.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}
	partial := models.Element{
		Position: models.Position{X: getFloat(args, "x", 0), Y: getFloat(args, "y", 0)},
		Size:     &size,
	}
	return s.edit(func(se *editor.Session) (string, error) {
		el, err := se.AddImage(partial, data, mime)
		return el.ID, err
	})
}

func (s *Server) updateElement(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()

	return s.edit(func(se *editor.Session) (string, error) {
		el, ok := se.Element(id)
		if !ok {
			return "", errElement(id)
		}
		var p editor.Patch
		if args["x"] != nil || args["y"] != nil {
			pos := models.Position{X: getFloat(args, "x", el.Position.X), Y: getFloat(args, "y", el.Position.Y)}
			p.Position = &pos
		}
		if args["width"] != nil || args["height"] != nil {
			cur := models.Size{}
			if el.Size != nil {
				cur = *el.Size
			}
			size := models.Size{Width: getFloat(args, "width", cur.Width), Height: getFloat(args, "height", cur.Height)}
			p.Size = &size
		}
		if z, ok := args["zIndex"].(float64); ok {
			zi := int(z)
			p.ZIndex = &zi
		}
		if text, ok := args["text"].(string); ok {
			props := el.Props
			props.Text = text
			p.Props = &props
		}
		if v, ok := getBool(args, "visible"); ok {
			p.Visible = &v
		}
		if v, ok := getBool(args, "locked"); ok {
			p.Locked = &v
		}
		if !se.UpdateElement(id, p) {
			return "", errElement(id)
		}
		return id, nil
	})
}

func (s *Server) removeElement(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.edit(func(se *editor.Session) (string, error) {
		if !se.RemoveElement(id) {
			return "", errElement(id)
		}
		return "", nil
	})
}

func (s *Server) duplicateElement(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.edit(func(se *editor.Session) (string, error) {
		el, ok := se.DuplicateElement(id)
		if !ok {
			return "", errElement(id)
		}
		return el.ID, nil
	})
}

func (s *Server) setEffect(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	effect, err := req.RequireString("effect")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := effects.Name(effect)
	args := req.GetArguments()
	param := req.GetString("param", "")
	if param == "" && args["value"] != nil {
		param = "value"
	}

	return s.edit(func(se *editor.Session) (string, error) {
		var warning error
		if param != "" {
			value, ok := args["value"].(float64)
			if !ok {
				return "", fmt.Errorf("%w: value is required with param", apperr.ErrValidation)
			}
			warning = se.SetEffectParam(id, name, param, value)
			if warning != nil && !errors.Is(warning, apperr.ErrRangeWarning) {
				return "", warning
			}
		}
		if color := req.GetString("color", ""); color != "" {
			if err := se.SetEffectColor(id, name, color); err != nil {
				return "", err
			}
		}
		if enabled, ok := getBool(args, "enabled"); ok {
			if err := se.ToggleEffect(id, name, enabled); err != nil {
				return "", err
			}
		}
		return id, warning
	})
}

func (s *Server) applyMask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mask, err := req.RequireString("mask")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.edit(func(se *editor.Session) (string, error) {
		ok, err := se.ApplyMask(ctx, id, mask)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: image element %s", apperr.ErrNotFound, id)
		}
		return id, nil
	})
}

func (s *Server) removeMask(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.edit(func(se *editor.Session) (string, error) {
		if !se.RemoveMask(id) {
			return "", fmt.Errorf("%w: masked image element %s", apperr.ErrNotFound, id)
		}
		return id, nil
	})
}

func (s *Server) listMasks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	ids := s.session.Catalogue().IDs()
	s.mu.Unlock()
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

func (s *Server) setCanvas(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ratio := req.GetString("ratio", "")
	args := req.GetArguments()
	width, height := getFloat(args, "width", 0), getFloat(args, "height", 0)
	if ratio == "" && (width == 0 || height == 0) {
		return mcp.NewToolResultError("either ratio or width and height are required"), nil
	}
	return s.edit(func(se *editor.Session) (string, error) {
		if ratio != "" {
			return "", se.ApplyCanvasPreset(ratio)
		}
		return "", se.UpdateCanvasSize(int(width), int(height))
	})
}

func (s *Server) setBackground(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value := req.GetString("value", "")
	return s.edit(func(se *editor.Session) (string, error) {
		if t == "none" {
			se.ClearBackground()
			return "", nil
		}
		return "", se.SetBackground(models.BackgroundType(t), value)
	})
}

func (s *Server) undo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.edit(func(se *editor.Session) (string, error) {
		se.Undo()
		return "", nil
	})
}

func (s *Server) redo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.edit(func(se *editor.Session) (string, error) {
		se.Redo()
		return "", nil
	})
}

func (s *Server) clearEditor(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.edit(func(se *editor.Session) (string, error) {
		se.ClearEditor()
		return "", nil
	})
}
