package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport turns an ordered snapshot series into per-run deltas
// plus moving averages over the given window.
func BuildTrendReport(projectKey string, snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:       current.Timestamp,
			RunID:           current.RunID,
			FileCount:       current.FileCount,
			ModuleCount:     current.ModuleCount,
			SingletonCount:  current.SingletonCount,
			MergedCount:     current.MergedCount,
			DependencyEdges: current.DependencyEdges,
			DroppedEdges:    current.DroppedEdges,
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaModules = current.ModuleCount - prev.ModuleCount
			point.DeltaFiles = current.FileCount - prev.FileCount
			point.DeltaSingletons = current.SingletonCount - prev.SingletonCount
			point.DeltaEdges = current.DependencyEdges - prev.DependencyEdges
			if prev.ModuleCount > 0 {
				point.ModuleGrowthPct = (float64(point.DeltaModules) / float64(prev.ModuleCount)) * 100
			}
		}

		avgModules, avgDropped := movingAverages(snapshots, i, window)
		point.AvgModules = round2(avgModules)
		point.AvgDropped = round2(avgDropped)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    normalizeProjectKey(projectKey),
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		RunCount:      len(points),
		Points:        points,
	}, nil
}

func movingAverages(snapshots []Snapshot, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		return float64(snapshots[index].ModuleCount), float64(snapshots[index].DroppedEdges)
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	var modulesTotal int
	var droppedTotal int
	count := 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		modulesTotal += snapshots[i].ModuleCount
		droppedTotal += snapshots[i].DroppedEdges
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(modulesTotal) / float64(count), float64(droppedTotal) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
