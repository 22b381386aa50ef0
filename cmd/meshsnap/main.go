// Mesh snapshot tool - renders the extracted surface to a PNG file for inspection.
//
// Usage: go run ./cmd/meshsnap -ticks 120 -out surface.png
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/camera"
	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/metaballs"
	"github.com/pthm-cable/metaballs/renderer"
	"github.com/pthm-cable/metaballs/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (uses embedded defaults if empty)")
	snapshotPath := flag.String("snapshot", "", "Restore balls from a snapshot file before rendering")
	outPath := flag.String("out", "surface.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	seed := flag.Int64("seed", 1, "Ball placement seed")
	ticks := flag.Int("ticks", 60, "Passes to advance before rendering")
	yaw := flag.Float64("yaw", -1, "Camera yaw in radians (negative keeps the default)")
	wireframe := flag.Bool("wireframe", false, "Draw triangle edges only")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	mb := metaballs.New(config.Cfg(), *seed)
	if *snapshotPath != "" {
		snap, err := telemetry.LoadSnapshot(*snapshotPath)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		if err := snap.Restore(mb); err != nil {
			slog.Error("failed to restore snapshot", "error", err)
			os.Exit(1)
		}
	}
	for i := 0; i < *ticks; i++ {
		mb.Update(1.0 / 60.0)
	}
	stats := mb.Update(0)

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Mesh Snapshot")
	defer rl.CloseWindow()

	meshRenderer := renderer.NewMeshRenderer()
	meshRenderer.Wireframe = *wireframe
	if err := mb.Render(meshRenderer); err != nil {
		slog.Error("failed to publish mesh", "error", err)
		os.Exit(1)
	}

	cam := camera.New(float64(*width), float64(*height), mb.Scale())
	if *yaw >= 0 {
		cam.Orbit(*yaw-cam.Yaw, 0)
	}

	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	rl.BeginMode3D(renderer.Camera3D(cam))
	meshRenderer.Draw()
	renderer.DrawBox(mb.GridBounds(), rl.NewColor(80, 90, 110, 255))
	rl.EndMode3D()
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Surface rendered to: %s (%dx%d, %d triangles)\n", *outPath, *width, *height, stats.Triangles)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
