package history

import "time"

const SchemaVersion = 1

// Snapshot records the outcome of one partitioning run.
type Snapshot struct {
	SchemaVersion   int       `json:"schema_version"`
	RunID           string    `json:"run_id"`
	Timestamp       time.Time `json:"timestamp"`
	FileCount       int       `json:"file_count"`
	ModuleCount     int       `json:"module_count"`
	SingletonCount  int       `json:"singleton_count"`
	MergedCount     int       `json:"merged_count"`
	DependencyEdges int       `json:"dependency_edges"`
	DroppedEdges    int       `json:"dropped_edges"`
	MaxModuleBytes  int64     `json:"max_module_bytes"`
}

type TrendPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	RunID           string    `json:"run_id"`
	FileCount       int       `json:"file_count"`
	ModuleCount     int       `json:"module_count"`
	SingletonCount  int       `json:"singleton_count"`
	MergedCount     int       `json:"merged_count"`
	DependencyEdges int       `json:"dependency_edges"`
	DroppedEdges    int       `json:"dropped_edges"`
	DeltaModules    int       `json:"delta_modules"`
	DeltaFiles      int       `json:"delta_files"`
	DeltaSingletons int       `json:"delta_singletons"`
	DeltaEdges      int       `json:"delta_edges"`
	ModuleGrowthPct float64   `json:"module_growth_pct"`
	AvgModules      float64   `json:"avg_modules"`
	AvgDropped      float64   `json:"avg_dropped"`
	WindowHours     float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	ProjectKey    string       `json:"project_key"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	Points        []TrendPoint `json:"points"`
}
