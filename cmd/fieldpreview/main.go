// Energy field preview tool - interactive z-slice of the metaball field with sliders.
//
// Usage: go run ./cmd/fieldpreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/metaballs"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	sliceRes     = 192
)

// PreviewParams holds the values driven by the sliders.
type PreviewParams struct {
	Level    float32
	SliceZ   float32 // Fraction of half scale in [-1,1]
	NumBalls int
	Kernel   string
}

func main() {
	configPath := flag.String("config", "", "Path to config file (uses embedded defaults if empty)")
	seed := flag.Int64("seed", 1, "Ball placement seed")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := *config.Cfg()

	rl.InitWindow(windowWidth, windowHeight, "Energy Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := PreviewParams{
		Level:    float32(cfg.Field.Level),
		NumBalls: cfg.Metaballs.NumBalls,
		Kernel:   cfg.Field.Kernel,
	}
	mb := metaballs.New(&cfg, *seed)
	mb.Update(0)

	energy := make([]float64, sliceRes*sliceRes)
	img := rl.GenImageColor(sliceRes, sliceRes, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	animating := false
	needsRegen := true

	for !rl.WindowShouldClose() {
		if animating {
			mb.Update(float64(rl.GetFrameTime()))
			needsRegen = true
		}

		if needsRegen {
			sampleSlice(mb, energy, float64(params.SliceZ))
			updateTexture(texture, energy, mb.Level())
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: sliceRes, Height: sliceRes},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		minVal, maxVal, inside := sliceStats(energy, mb.Level())
		stats := mb.Stats()
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Min: %.2f  Max: %.2f  Inside: %.1f%%", minVal, maxVal, inside*100), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Triangles: %d  Visited: %d  Evaluations: %d", stats.Triangles, stats.Visited, stats.Evaluations), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Iso radius: %.2f", mb.IsoRadius()), 15, statsY+40, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Energy Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Level (iso threshold)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		lo, hi := mb.LevelRange()
		newLevel := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			fmt.Sprintf("%g", lo), fmt.Sprintf("%g", hi),
			params.Level, float32(lo), float32(hi),
		)
		rl.DrawText(fmt.Sprintf("%.3g", params.Level), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newLevel != params.Level {
			params.Level = newLevel
			mb.SetLevel(float64(newLevel))
			mb.Update(0)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Slice Z (fraction of half scale)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSlice := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-1", "1",
			params.SliceZ, -1, 1,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.SliceZ), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSlice != params.SliceZ {
			params.SliceZ = newSlice
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Balls", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newBalls := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", fmt.Sprint(config.MaxBalls),
			float32(params.NumBalls), 0, config.MaxBalls,
		)
		rl.DrawText(fmt.Sprintf("%d", params.NumBalls), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newBalls) != params.NumBalls {
			params.NumBalls = int(newBalls)
			mb.SetNumBalls(params.NumBalls)
			mb.Update(0)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Kernel: "+params.Kernel) {
			if params.Kernel == config.KernelWyvill {
				params.Kernel = config.KernelInverseSquare
			} else {
				params.Kernel = config.KernelWyvill
			}
			mb.SetKernel(params.Kernel)
			params.Level = float32(mb.Level())
			mb.Update(0)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reseed") {
			mb.Reseed()
			mb.Update(0)
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			cfg = *config.Cfg()
			params = PreviewParams{
				Level:    float32(cfg.Field.Level),
				NumBalls: cfg.Metaballs.NumBalls,
				Kernel:   cfg.Field.Kernel,
			}
			mb = metaballs.New(&cfg, *seed)
			mb.Update(0)
			animating = false
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		text := fieldYAML(mb)
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// fieldYAML renders the field section the way config files spell it.
func fieldYAML(mb *metaballs.Metaballs) string {
	cfg := mb.Config()
	out, err := yaml.Marshal(struct {
		Field config.FieldConfig `yaml:"field"`
	}{cfg.Field})
	if err != nil {
		return err.Error()
	}
	return string(out)
}

// sampleSlice fills out with field energy on the plane z = sliceZ * half scale.
func sampleSlice(mb *metaballs.Metaballs, out []float64, sliceZ float64) {
	box := mb.GridBounds()
	size := r3.Sub(box.Max, box.Min)
	z := sliceZ * size.Z / 2
	for y := 0; y < sliceRes; y++ {
		// Screen y grows downward
		wy := box.Max.Y - (float64(y)+0.5)/sliceRes*size.Y
		for x := 0; x < sliceRes; x++ {
			wx := box.Min.X + (float64(x)+0.5)/sliceRes*size.X
			out[y*sliceRes+x] = mb.EnergyAt(r3.Vec{X: wx, Y: wy, Z: z})
		}
	}
}

func sliceStats(energy []float64, level float64) (minVal, maxVal, inside float64) {
	minVal = math.Inf(1)
	maxVal = math.Inf(-1)
	n := 0
	for _, e := range energy {
		minVal = min(minVal, e)
		maxVal = max(maxVal, e)
		if e >= level {
			n++
		}
	}
	return minVal, maxVal, float64(n) / float64(len(energy))
}

// updateTexture maps energy to a heat gradient with the iso contour in white.
func updateTexture(texture rl.Texture2D, energy []float64, level float64) {
	pixels := make([]color.RGBA, len(energy))
	band := level * 0.04
	for i, e := range energy {
		if math.Abs(e-level) < band {
			pixels[i] = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			continue
		}
		v := clamp01(e / (2 * level))
		var r, g, b float64
		if v < 0.5 {
			// Dark blue to cyan outside the surface
			t := v / 0.5
			r, g, b = 10+t*30, 20+t*160, 60+t*140
		} else {
			// Orange to yellow inside
			t := (v - 0.5) / 0.5
			r, g, b = 200+t*55, 90+t*140, 30+t*40
		}
		pixels[i] = color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
