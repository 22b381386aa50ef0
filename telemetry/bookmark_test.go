package telemetry

import (
	"testing"

	"github.com/pthm-cable/metaballs/config"
)

func init() {
	config.MustInit("")
}

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_TriangleSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Add some history with a steady surface
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), Passes: 60, TrianglesMean: 100})
	}

	// Now add a window with >2x the triangles
	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, Passes: 60, TrianglesMean: 300})
	if !hasBookmark(bookmarks, BookmarkTriangleSpike) {
		t.Error("expected triangle_spike bookmark")
	}
}

func TestBookmarkDetector_Overflow(t *testing.T) {
	bd := NewBookmarkDetector(10)

	windows := []struct {
		overflows int
		want      bool
	}{
		{0, false},
		{3, true},  // onset
		{2, false}, // still overflowing
		{0, false},
		{1, true}, // onset again
	}
	for i, w := range windows {
		got := hasBookmark(bd.Check(WindowStats{WindowEndTick: int32(i * 60), Passes: 60, Overflows: w.overflows}), BookmarkOverflow)
		if got != w.want {
			t.Errorf("window %d: expected overflow bookmark %v, got %v", i, w.want, got)
		}
	}
}

func TestBookmarkDetector_MergeAndSplit(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEndTick: 60, Passes: 10, SharedSeeds: 0})

	// Two balls per pass now land on an existing surface
	if !hasBookmark(bd.Check(WindowStats{WindowEndTick: 120, Passes: 10, SharedSeeds: 20}), BookmarkMerge) {
		t.Error("expected merge bookmark")
	}
	if !hasBookmark(bd.Check(WindowStats{WindowEndTick: 180, Passes: 10, SharedSeeds: 0}), BookmarkSplit) {
		t.Error("expected split bookmark")
	}
	if bookmarks := bd.Check(WindowStats{WindowEndTick: 240, Passes: 10, SharedSeeds: 5}); hasBookmark(bookmarks, BookmarkMerge) {
		t.Error("half a ball per pass should not count as a merge")
	}
}

func TestBookmarkDetector_StableSurface(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Add steady windows; the bookmark fires exactly once
	count := 0
	for i := 0; i < 10; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i * 60), Passes: 60, TrianglesMean: 500})
		if hasBookmark(bookmarks, BookmarkStableSurface) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected one stable_surface bookmark, got %d", count)
	}
}
