package game

import (
	"log/slog"

	"github.com/pthm-cable/metaballs/mesh"
	"github.com/pthm-cable/metaballs/telemetry"
)

// flushTelemetry closes the stats window when it is due, writes it out and
// acts on any bookmarks it triggers.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	g.radii = telemetry.SurfaceRadii(g.radii, g.mb.Mesh().Vertices, g.ballCenters())
	window := g.collector.Flush(g.tick, g.radii)
	perf := g.perfCollector.Stats()
	if g.logStats {
		window.LogStats()
		perf.LogStats()
	}

	logIfErr("write window stats", g.outputManager.WriteWindow(window))
	logIfErr("write perf", g.outputManager.WritePerf(perf, window.WindowEndTick))

	for _, bm := range g.bookmarkDetector.Check(window) {
		g.onBookmark(bm)
	}
}

// onBookmark records bm with the surface and, when enabled, a snapshot.
func (g *Game) onBookmark(bm telemetry.Bookmark) {
	if g.logStats {
		bm.LogBookmark()
	}
	logIfErr("write bookmark", g.outputManager.WriteBookmark(bm))
	if _, err := g.outputManager.WriteMesh(g.tick); err != nil {
		logIfErr("write bookmark mesh", err)
	}
	if g.snapshotDir == "" {
		return
	}

	snap := telemetry.CaptureSnapshot(g.mb, g.rngSeed, g.tick)
	snap.Bookmark = &bm
	path, err := telemetry.SaveSnapshot(snap, g.snapshotDir)
	if err != nil {
		logIfErr("save snapshot", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick, "bookmark", bm.Type)
}

func logIfErr(action string, err error) {
	if err != nil {
		slog.Error("failed to "+action, "error", err)
	}
}

// exportOBJ writes the current surface to path.
func (g *Game) exportOBJ(path string) {
	if err := mesh.WriteOBJFile(path, g.mb.Mesh()); err != nil {
		slog.Error("failed to write mesh", "path", path, "error", err)
		return
	}
	slog.Info("mesh written",
		"path", path,
		"vertices", g.mb.Mesh().NumVertices(),
		"triangles", g.mb.Mesh().NumTriangles(),
	)
}
