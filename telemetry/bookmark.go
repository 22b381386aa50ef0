package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkOverflow      BookmarkType = "overflow"
	BookmarkTriangleSpike BookmarkType = "triangle_spike"
	BookmarkMerge         BookmarkType = "merge"
	BookmarkSplit         BookmarkType = "split"
	BookmarkStableSurface BookmarkType = "stable_surface"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches successive stats windows for notable events.
type BookmarkDetector struct {
	// Previous windows, oldest first
	history []WindowStats
	limit   int
	scratch []float64

	lastSharedRate float64 // shared seeds per pass in the previous window
	overflowing    bool    // previous window overflowed
	stableRun      int     // consecutive windows with steady triangle counts
}

// stableWindows is how many steady windows make a stable surface.
const stableWindows = 5

// NewBookmarkDetector creates a detector comparing against up to historySize
// previous windows.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	return &BookmarkDetector{limit: max(historySize, stableWindows)}
}

// Check analyzes the latest window and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	add(bd.checkOverflow(stats))
	if len(bd.history) > 0 {
		add(bd.checkTriangleSpike(stats))
		add(bd.checkTopology(stats))
		add(bd.checkStableSurface(stats))
	}

	if len(bd.history) == bd.limit {
		bd.history = append(bd.history[:0], bd.history[1:]...)
	}
	bd.history = append(bd.history, stats)
	bd.lastSharedRate = sharedRate(stats)

	return bookmarks
}

func sharedRate(stats WindowStats) float64 {
	if stats.Passes == 0 {
		return 0
	}
	return float64(stats.SharedSeeds) / float64(stats.Passes)
}

// triangles returns the mean triangle counts of the last n windows.
func (bd *BookmarkDetector) triangles(n int) []float64 {
	bd.scratch = bd.scratch[:0]
	for _, h := range bd.history[max(len(bd.history)-n, 0):] {
		bd.scratch = append(bd.scratch, h.TrianglesMean)
	}
	return bd.scratch
}

func (bd *BookmarkDetector) checkOverflow(stats WindowStats) *Bookmark {
	onset := !bd.overflowing && stats.Overflows > 0
	bd.overflowing = stats.Overflows > 0
	if !onset {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkOverflow,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Open list overflowed in %d of %d passes (%d voxels dropped)", stats.Overflows, stats.Passes, stats.Dropped),
	}
}

// checkTriangleSpike fires when the surface is more than twice its recent size.
func (bd *BookmarkDetector) checkTriangleSpike(stats WindowStats) *Bookmark {
	if len(bd.history) < 3 {
		return nil
	}
	avg := stat.Mean(bd.triangles(len(bd.history)), nil)
	if avg == 0 || stats.TrianglesMean <= 2*avg {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkTriangleSpike,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Triangles %.0f is %.1fx average (%.0f)", stats.TrianglesMean, stats.TrianglesMean/avg, avg),
	}
}

// checkTopology fires when at least one more or one fewer ball per pass
// seeds onto a surface another ball already produced.
func (bd *BookmarkDetector) checkTopology(stats WindowStats) *Bookmark {
	prev, rate := bd.lastSharedRate, sharedRate(stats)
	b := &Bookmark{Tick: stats.WindowEndTick}
	switch {
	case rate >= prev+1:
		b.Type = BookmarkMerge
		b.Description = fmt.Sprintf("Balls sharing a surface rose from %.1f to %.1f per pass", prev, rate)
	case rate <= prev-1:
		b.Type = BookmarkSplit
		b.Description = fmt.Sprintf("Balls sharing a surface fell from %.1f to %.1f per pass", prev, rate)
	default:
		return nil
	}
	return b
}

// checkStableSurface fires once when the triangle count of the last four
// windows has stayed within a 5% coefficient of variation for five checks.
func (bd *BookmarkDetector) checkStableSurface(stats WindowStats) *Bookmark {
	if stats.TrianglesMean == 0 {
		bd.stableRun = 0
		return nil
	}
	if len(bd.history) < 4 {
		return nil
	}

	mean, variance := stat.PopMeanVariance(bd.triangles(4), nil)
	if mean > 0 && variance/(mean*mean) < 0.05*0.05 {
		bd.stableRun++
	} else {
		bd.stableRun = 0
	}
	if bd.stableRun != stableWindows {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStableSurface,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Stable surface of ~%.0f triangles over %d+ windows", stats.TrianglesMean, stableWindows),
	}
}
