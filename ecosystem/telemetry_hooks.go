package ecosystem

import (
	"log/slog"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (eco *Ecosystem) flushTelemetry() {
	if !eco.collector.ShouldFlush(eco.tick) {
		return
	}

	stats, species := eco.collector.Flush(eco.tick, eco.census())
	perfStats := eco.perfCollector.Stats()

	if eco.statsCallback != nil {
		eco.statsCallback(stats)
	}

	// Console output
	if eco.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if eco.outputManager != nil {
		if err := eco.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := eco.outputManager.WriteSpecies(species); err != nil {
			slog.Error("failed to write species stats", "error", err)
		}
		if err := eco.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range eco.bookmarkDetector.Check(stats) {
		eco.bookmarks = append(eco.bookmarks, bm)

		if eco.logStats {
			bm.LogBookmark()
		}
		if eco.outputManager != nil {
			if err := eco.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}
