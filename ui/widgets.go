package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws primitives in one theme.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a title with an underline and returns the next y.
func (r *Renderer) DrawSectionHeader(x, y, width int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	rl.DrawLine(x, y+r.Theme.HeaderFontSize+1, x+width, y+r.Theme.HeaderFontSize+1, r.Theme.PanelBorder)
	return y + r.Theme.LineHeight + 2
}

// DrawLabelValue draws a label and a value in col and returns the next y.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string, col rl.Color) int32 {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, col)
	return y + r.Theme.LineHeight
}

// DrawBar draws a fill bar for a fraction in [0, 1] with text at its end.
// Fractions above 0.9 use the high fill color.
func (r *Renderer) DrawBar(x, y int32, label string, frac float64, text string, width int32) int32 {
	frac = min(max(frac, 0), 1)

	barX := x + r.Theme.LabelWidth
	barW := width - r.Theme.LabelWidth - 50

	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barW, r.Theme.BarHeight, r.Theme.BarBg)

	fill := r.Theme.BarFill
	if frac > 0.9 {
		fill = r.Theme.BarFillHigh
	}
	rl.DrawRectangle(barX, y+2, int32(float64(barW)*frac), r.Theme.BarHeight, fill)
	rl.DrawText(text, barX+barW+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

func fieldText[T any](fd FieldDescriptor[T], data T) string {
	switch {
	case fd.Text != nil:
		return fd.Text(data)
	case fd.Value != nil && fd.Format != "":
		return fmt.Sprintf(fd.Format, fd.Value(data))
	case fd.Value != nil:
		return fmt.Sprintf("%.2f", fd.Value(data))
	}
	return ""
}

// DrawField renders one field and returns the next y.
func DrawField[T any](r *Renderer, x, y int32, fd FieldDescriptor[T], data T, width int32) int32 {
	switch fd.Widget {
	case WidgetText:
		col := r.Theme.ValueColor
		if fd.Warn != nil && fd.Warn(data) {
			col = r.Theme.WarnColor
		}
		return r.DrawLabelValue(x, y, fd.Label, fieldText(fd, data), col)

	case WidgetBar:
		var frac float64
		if fd.Value != nil {
			frac = fd.Value(data)
		}
		text := fmt.Sprintf("%.0f%%", min(max(frac, 0), 1)*100)
		if fd.Text != nil {
			text = fd.Text(data)
		}
		return r.DrawBar(x, y, fd.Label, frac, text, width)

	case WidgetSection:
		return r.DrawSectionHeader(x, y, width, fd.Label)

	case WidgetSpacer:
		return y + 6
	}
	return y
}

// DrawSection renders a section with header and fields and returns the next y.
func DrawSection[T any](r *Renderer, x, y int32, sd SectionDescriptor[T], data T, width int32) int32 {
	if sd.Visible != nil && !sd.Visible(data) {
		return y
	}
	if sd.Title != "" {
		y = r.DrawSectionHeader(x, y, width, sd.Title)
	}
	for _, fd := range sd.Fields {
		if fd.Visible != nil && !fd.Visible(data) {
			continue
		}
		y = DrawField(r, x, y, fd, data, width)
	}
	return y + 4
}

// SectionHeight returns the height DrawSection will use for data.
func SectionHeight[T any](r *Renderer, sd SectionDescriptor[T], data T) int32 {
	if sd.Visible != nil && !sd.Visible(data) {
		return 0
	}
	h := int32(4)
	if sd.Title != "" {
		h += r.Theme.LineHeight + 2
	}
	for _, fd := range sd.Fields {
		if fd.Visible != nil && !fd.Visible(data) {
			continue
		}
		switch fd.Widget {
		case WidgetBar, WidgetSection:
			h += r.Theme.LineHeight + 2
		case WidgetSpacer:
			h += 6
		default:
			h += r.Theme.LineHeight
		}
	}
	return h
}
