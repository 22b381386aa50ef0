package ui

import (
	"fmt"

	"github.com/pthm-cable/metaballs/metaballs"
	"github.com/pthm-cable/metaballs/telemetry"
)

// StatsData is what the stats panel displays.
type StatsData struct {
	Pass    metaballs.Stats
	Ceiling int // open list ceiling
	Perf    telemetry.PerfStats
}

type statsField = FieldDescriptor[StatsData]

func countField(id, label string, get func(StatsData) int) statsField {
	return statsField{
		ID:     id,
		Label:  label,
		Widget: WidgetText,
		Text:   func(d StatsData) string { return fmt.Sprintf("%d", get(d)) },
	}
}

func phaseBar(phase string) statsField {
	return statsField{
		ID:     "perf_" + phase,
		Label:  phase,
		Widget: WidgetBar,
		Value:  func(d StatsData) float64 { return d.Perf.PhasePct[phase] / 100 },
		Text: func(d StatsData) string {
			return fmt.Sprintf("%dus", d.Perf.PhaseAvg[phase].Microseconds())
		},
	}
}

// statsSections lays out the stats panel.
var statsSections = []SectionDescriptor[StatsData]{
	{
		ID:    "surface",
		Title: "Surface",
		Fields: []statsField{
			countField("vertices", "Vertices", func(d StatsData) int { return d.Pass.Vertices }),
			countField("triangles", "Triangles", func(d StatsData) int { return d.Pass.Triangles }),
			countField("seeds", "Seeds", func(d StatsData) int { return d.Pass.Seeds }),
			countField("shared", "Shared seeds", func(d StatsData) int { return d.Pass.SharedSeeds }),
			{
				ID:     "missed",
				Label:  "Missed seeds",
				Widget: WidgetText,
				Text:   func(d StatsData) string { return fmt.Sprintf("%d", d.Pass.MissedSeeds) },
				Warn:   func(d StatsData) bool { return d.Pass.MissedSeeds > 0 },
			},
		},
	},
	{
		ID:    "propagation",
		Title: "Propagation",
		Fields: []statsField{
			countField("visited", "Visited", func(d StatsData) int { return d.Pass.Visited }),
			countField("evaluations", "Evaluations", func(d StatsData) int { return d.Pass.Evaluations }),
			{
				ID:     "open_fill",
				Label:  "Open list",
				Widget: WidgetBar,
				Value: func(d StatsData) float64 {
					if d.Ceiling == 0 {
						return 0
					}
					return float64(d.Pass.PeakOpen) / float64(d.Ceiling)
				},
				Text: func(d StatsData) string { return fmt.Sprintf("%d", d.Pass.PeakOpen) },
			},
			{
				ID:      "dropped",
				Label:   "Dropped",
				Widget:  WidgetText,
				Visible: func(d StatsData) bool { return d.Pass.Overflow },
				Text:    func(d StatsData) string { return fmt.Sprintf("%d (overflow)", d.Pass.Dropped) },
				Warn:    func(StatsData) bool { return true },
			},
		},
	},
	{
		ID:    "perf",
		Title: "Frame",
		Fields: []statsField{
			{
				ID:     "tick_us",
				Label:  "Tick",
				Widget: WidgetText,
				Text: func(d StatsData) string {
					return fmt.Sprintf("%dus +-%d", d.Perf.AvgTickDuration.Microseconds(), d.Perf.TickJitter.Microseconds())
				},
			},
			phaseBar(telemetry.PhaseBalls),
			phaseBar(telemetry.PhaseGrid),
			phaseBar(telemetry.PhaseExtract),
			phaseBar(telemetry.PhasePublish),
		},
	},
}

// StatsPanel renders pass and frame statistics on the right side of the screen.
type StatsPanel struct {
	renderer *Renderer
	width    int32
	visible  bool
}

// NewStatsPanel creates a visible stats panel.
func NewStatsPanel(width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (p *StatsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Draw renders the panel anchored to the top right of the screen.
func (p *StatsPanel) Draw(screenWidth int32, data StatsData) {
	if !p.visible {
		return
	}

	r := p.renderer
	padding := r.Theme.Padding

	height := padding * 2
	for _, sd := range statsSections {
		height += SectionHeight(r, sd, data)
	}

	x := screenWidth - p.width - padding
	y := padding
	r.DrawPanel(x, y, p.width, height)

	y += padding
	for _, sd := range statsSections {
		y = DrawSection(r, x+padding, y, sd, data, p.width-padding*2)
	}
}
