package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/ecosystem"
	"github.com/pthm-cable/simlac/telemetry"
)

const barWidth = 30

var layerStyles = [len(components.Kinds)]tcell.Style{
	tcell.StyleDefault.Foreground(tcell.ColorGreen),
	tcell.StyleDefault.Foreground(tcell.ColorYellow),
	tcell.StyleDefault.Foreground(tcell.ColorRed),
}

var (
	headerStyle = tcell.StyleDefault.Bold(true)
	dimStyle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// view draws the lake census on a terminal screen.
type view struct {
	screen tcell.Screen
	eco    *ecosystem.Ecosystem
	paused bool
}

func newView(screen tcell.Screen, eco *ecosystem.Ecosystem) *view {
	return &view{screen: screen, eco: eco}
}

// handleEvent applies one terminal event. Returns false when the view should close.
func (v *view) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			v.paused = !v.paused
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// draw renders one frame: a status line, then one table per layer with an
// energy bar per species scaled to the layer's total.
func (v *view) draw() {
	v.screen.Clear()
	v.eco.RecordFrame()

	summary := v.eco.Summarize()
	perf := v.eco.Perf()

	status := fmt.Sprintf("tick %d  solar %.0f  %.0f tps  %.0f fps", summary.Tick, v.eco.SolarEnergy(), perf.TicksPerSecond, perf.FPS)
	if v.paused {
		status += "  [paused]"
	}
	y := v.print(0, 0, headerStyle, status)
	y++

	for _, kind := range components.Kinds {
		layer := summary.Layer(kind)
		style := layerStyles[kind]

		y = v.print(0, y, style.Bold(true), fmt.Sprintf("%ss: %d species, %d individuals, %.2f energy",
			kind, len(layer.Species), layer.Count(), layer.Energy()))
		if len(layer.Species) == 0 {
			y = v.print(2, y, dimStyle, "extinct")
		}
		for _, sp := range layer.Species {
			y = v.print(2, y, style, fmt.Sprintf("%-12s %6d %10.2f %s", sp.Name, sp.Count, sp.Energy, bar(sp, layer)))
		}
		y++
	}

	if bms := v.eco.Bookmarks(); len(bms) > 0 {
		last := bms[len(bms)-1]
		v.print(0, y, dimStyle, fmt.Sprintf("last event: %s at tick %d: %s", last.Type, last.Tick, last.Description))
	}

	_, h := v.screen.Size()
	v.print(0, h-1, dimStyle, "space: pause  q/esc: quit")

	v.screen.Show()
}

// print writes text at (x, y) and returns the next row.
func (v *view) print(x, y int, style tcell.Style, text string) int {
	for i, r := range []rune(text) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
	return y + 1
}

// bar renders a species' share of its layer's energy.
func bar(sp telemetry.SpeciesSummary, layer telemetry.LayerSummary) string {
	total := layer.Energy()
	if total <= 0 {
		return ""
	}
	n := int(sp.Energy / total * barWidth)
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("█", n)
}
