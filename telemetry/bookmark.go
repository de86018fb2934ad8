package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/simlac/components"
	"github.com/pthm-cable/simlac/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction      BookmarkType = "extinction"
	BookmarkHerbivoreCrash  BookmarkType = "herbivore_crash"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
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

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	extinct            [len(components.Kinds)]bool
	recentHerbPeak     int // peak herbivore count since the last crash
	stableWindowsCount int // consecutive stable windows
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if cfg.StableEcosystem.StableWindows < 2 {
		cfg.StableEcosystem.StableWindows = 2
	}
	if historySize < cfg.StableEcosystem.StableWindows {
		historySize = cfg.StableEcosystem.StableWindows
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// Extinction: a layer that had members is now empty
	bookmarks = append(bookmarks, bd.checkExtinction(stats)...)

	// Herbivore crash: dropped beyond the configured share of the recent peak
	if b := bd.checkHerbivoreCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Update history
	bd.addToHistory(stats)

	// Stable ecosystem: every layer present with low variance over the last windows
	if b := bd.checkStableEcosystem(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.HerbivoreCount > bd.recentHerbPeak {
		bd.recentHerbPeak = stats.HerbivoreCount
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n most recent windows in chronological order.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	if n > size {
		n = size
	}
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func layerCounts(s WindowStats) [len(components.Kinds)]int {
	return [len(components.Kinds)]int{s.PlantCount, s.HerbivoreCount, s.CarnivoreCount}
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) []Bookmark {
	var out []Bookmark
	counts := layerCounts(stats)
	for _, kind := range components.Kinds {
		if counts[kind] > 0 {
			bd.extinct[kind] = false
			continue
		}
		if bd.extinct[kind] {
			continue
		}
		bd.extinct[kind] = true
		out = append(out, Bookmark{
			Type:        BookmarkExtinction,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("No %s left in the lake", kind),
		})
	}
	return out
}

func (bd *BookmarkDetector) checkHerbivoreCrash(stats WindowStats) *Bookmark {
	cfg := bd.cfg.HerbivoreCrash
	if bd.recentHerbPeak == 0 || stats.HerbivoreCount == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.HerbivoreCount)/float64(bd.recentHerbPeak)
	if dropPercent > cfg.DropPercent && stats.HerbivoreCount <= bd.recentHerbPeak-cfg.MinDrop {
		// Reset peak after crash
		oldPeak := bd.recentHerbPeak
		bd.recentHerbPeak = stats.HerbivoreCount

		return &Bookmark{
			Type:        BookmarkHerbivoreCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.HerbivoreCount),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	cfg := bd.cfg.StableEcosystem

	if stats.PlantCount < cfg.MinPlants || stats.HerbivoreCount < cfg.MinHerbivores ||
		stats.CarnivoreCount < cfg.MinCarnivores || stats.CarnivoreCount == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	window := bd.recent(cfg.StableWindows)
	if len(window) < cfg.StableWindows {
		return nil
	}

	series := make([][]float64, len(components.Kinds))
	for _, w := range window {
		for kind, n := range layerCounts(w) {
			series[kind] = append(series[kind], float64(n))
		}
	}

	stable := true
	for _, s := range series {
		if CoefficientOfVariation(s) >= cfg.CVThreshold {
			stable = false
			break
		}
	}

	if !stable {
		bd.stableWindowsCount = 0
		return nil
	}

	bd.stableWindowsCount++
	if bd.stableWindowsCount == 1 { // trigger once per stable stretch
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d plants, %d herbivores, %d carnivores over %d windows", stats.PlantCount, stats.HerbivoreCount, stats.CarnivoreCount, cfg.StableWindows),
		}
	}

	return nil
}
