package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Widget selects how a field is drawn.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetVector
	WidgetBool
	WidgetSkip
)

var widgetNames = map[string]Widget{
	"label":  WidgetLabel,
	"bar":    WidgetBar,
	"vector": WidgetVector,
	"bool":   WidgetBool,
	"skip":   WidgetSkip,
}

// Hints are the rendering options of an inspect tag.
type Hints struct {
	Format string  // printf verb per scalar, "" = %.2f for floats
	Max    float64 // bar full scale
	Mark   float64 // bar threshold as a fraction of Max, 0 = none
}

// Field is one exported struct field ready to draw.
type Field struct {
	Name   string
	Value  any
	Widget Widget
	Hints  Hints
}

// ParseTag parses an inspect struct tag of the form
// `inspect:"widget[,key:value...]"` with keys fmt, max and mark.
//
//	`inspect:"bar,max:200,mark:0.5"`
//	`inspect:"vector,fmt:%.1f"`
//	`inspect:"skip"`
//
// Unknown widgets fall back to WidgetAuto and malformed numbers are ignored.
func ParseTag(tag string) (Widget, Hints) {
	h := Hints{Max: 1}
	name, rest, _ := strings.Cut(tag, ",")
	w := widgetNames[strings.TrimSpace(name)]

	for _, opt := range strings.Split(rest, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(opt), ":")
		if !ok {
			continue
		}
		switch key {
		case "fmt":
			h.Format = val
		case "max":
			if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
				h.Max = f
			}
		case "mark":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				h.Mark = f
			}
		}
	}
	return w, h
}

type fieldInfo struct {
	index  int
	name   string
	widget Widget
	hints  Hints
}

var vecType = reflect.TypeOf(r3.Vec{})

// layouts caches the parsed tags per struct type.
var layouts sync.Map // reflect.Type -> []fieldInfo

func layoutOf(t reflect.Type) []fieldInfo {
	if l, ok := layouts.Load(t); ok {
		return l.([]fieldInfo)
	}
	var infos []fieldInfo
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		w, h := ParseTag(sf.Tag.Get("inspect"))
		switch {
		case w == WidgetSkip:
			continue
		case w != WidgetAuto:
		case sf.Type == vecType:
			w = WidgetVector
		case sf.Type.Kind() == reflect.Bool:
			w = WidgetBool
		default:
			w = WidgetLabel
		}
		infos = append(infos, fieldInfo{index: i, name: sf.Name, widget: w, hints: h})
	}
	l, _ := layouts.LoadOrStore(t, infos)
	return l.([]fieldInfo)
}

// ExtractFields returns the drawable fields of a struct or struct pointer,
// in declaration order. Other values yield nil.
func ExtractFields(v any) []Field {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	layout := layoutOf(rv.Type())
	fields := make([]Field, len(layout))
	for i, info := range layout {
		fields[i] = Field{
			Name:   info.name,
			Value:  rv.Field(info.index).Interface(),
			Widget: info.widget,
			Hints:  info.hints,
		}
	}
	return fields
}

// FormatValue renders value with format applied per scalar. Vectors print
// as a parenthesized triple.
func FormatValue(value any, format string) string {
	switch v := value.(type) {
	case r3.Vec:
		if format == "" {
			format = "%.2f"
		}
		return fmt.Sprintf("("+format+", "+format+", "+format+")", v.X, v.Y, v.Z)
	case float32, float64:
		if format == "" {
			format = "%.2f"
		}
	}
	if format == "" {
		return fmt.Sprint(value)
	}
	return fmt.Sprintf(format, value)
}

// AsFloat converts numeric values for bar widgets.
func AsFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}
