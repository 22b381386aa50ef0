// Package ui draws the viewer's panels from typed field descriptors.
// A panel is a list of sections; each field reads its value from the
// panel's data type, so layouts change without touching draw code.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText    WidgetType = iota // label and formatted value
	WidgetBar                       // fill bar over [0, 1]
	WidgetSection                   // sub-header
	WidgetSpacer                    // vertical gap
)

// FieldDescriptor describes one row of a panel showing data of type T.
type FieldDescriptor[T any] struct {
	ID      string
	Label   string
	Widget  WidgetType
	Format  string          // printf format for Value when Text is nil
	Visible func(T) bool    // nil = always
	Value   func(T) float64 // bar fill, or number for Format
	Text    func(T) string
	Warn    func(T) bool // draw the value in the warning color
}

// SectionDescriptor is a titled group of fields.
type SectionDescriptor[T any] struct {
	ID      string
	Title   string
	Fields  []FieldDescriptor[T]
	Visible func(T) bool
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	WarnColor      rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the dark theme used by every panel.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 18, G: 22, B: 30, A: 235},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 90, A: 255},
		SectionHeader:  rl.Color{R: 240, G: 210, B: 110, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		WarnColor:      rl.Color{R: 230, G: 120, B: 90, A: 255},
		BarBg:          rl.Color{R: 40, G: 44, B: 52, A: 255},
		BarFill:        rl.Color{R: 90, G: 160, B: 210, A: 255},
		BarFillHigh:    rl.Color{R: 210, G: 100, B: 90, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
