package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"
)

// Widget colors
var (
	ColorBarBg   = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarHigh = rl.Color{R: 220, G: 170, B: 70, A: 255}
	ColorText    = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorBoolOn  = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff = rl.Color{R: 80, G: 80, B: 80, A: 255}
	ColorAxisX   = rl.Color{R: 220, G: 90, B: 90, A: 255}
	ColorAxisY   = rl.Color{R: 110, G: 200, B: 110, A: 255}
	ColorAxisZ   = rl.Color{R: 100, G: 140, B: 230, A: 255}
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, h Hints) int32 {
	text := FormatValue(value, h.Format)
	rl.DrawText(fmt.Sprintf("%s: %s", name, text), x, y, 16, ColorText)
	return 20
}

// DrawBar renders a horizontal progress bar. The fill turns amber at or past
// h.Mark when one is set.
func DrawBar(x, y int32, name string, value float64, h Hints) int32 {
	ratio := 0.0
	if h.Max > 0 {
		ratio = clamp01(value / h.Max)
	}

	barWidth := int32(120)
	barHeight := int32(14)

	rl.DrawText(name, x, y, 14, ColorTextDim)

	barX := x + 80
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)

	fillColor := ColorBarFill
	if h.Mark > 0 {
		markX := barX + int32(float64(barWidth)*clamp01(h.Mark))
		rl.DrawLine(markX, y-2, markX, y+barHeight+2, ColorText)
		if ratio >= h.Mark {
			fillColor = ColorBarHigh
		}
	}
	rl.DrawRectangle(barX, y, int32(float64(barWidth)*ratio), barHeight, fillColor)

	rl.DrawText(FormatValue(value, h.Format), barX+barWidth+5, y, 14, ColorTextDim)

	return 18
}

// DrawVector renders a vector as its components, each in its axis color.
func DrawVector(x, y int32, name string, v r3.Vec, h Hints) int32 {
	fmtStr := h.Format
	if fmtStr == "" {
		fmtStr = "%.2f"
	}
	rl.DrawText(name, x, y, 14, ColorTextDim)

	cx := x + 100
	for i, c := range []struct {
		v   float64
		col rl.Color
	}{{v.X, ColorAxisX}, {v.Y, ColorAxisY}, {v.Z, ColorAxisZ}} {
		rl.DrawText(fmt.Sprintf(fmtStr, c.v), cx+int32(i)*65, y, 14, c.col)
	}
	return 18
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)

	indicatorX := x + 80
	indicatorSize := int32(14)

	color := ColorBoolOff
	text := "OFF"
	if value {
		color = ColorBoolOn
		text = "ON"
	}

	rl.DrawRectangle(indicatorX, y, indicatorSize, indicatorSize, color)
	rl.DrawText(text, indicatorX+indicatorSize+5, y, 14, color)

	return 18
}

// DrawField renders a field using its widget type.
func DrawField(x, y int32, field Field) int32 {
	switch field.Widget {
	case WidgetBar:
		if v, ok := AsFloat(field.Value); ok {
			return DrawBar(x, y, field.Name, v, field.Hints)
		}
	case WidgetVector:
		if v, ok := field.Value.(r3.Vec); ok {
			return DrawVector(x, y, field.Name, v, field.Hints)
		}
	case WidgetBool:
		if v, ok := field.Value.(bool); ok {
			return DrawBool(x, y, field.Name, v)
		}
	}
	return DrawLabel(x, y, field.Name, field.Value, field.Hints)
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
