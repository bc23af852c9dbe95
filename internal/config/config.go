// Package config handles site and layout configuration loading.
package config

// Config holds all planning settings.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Footprint FootprintConfig `yaml:"footprint"`
	Layout    LayoutConfig    `yaml:"layout"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig holds terrain input and classification settings.
type SiteConfig struct {
	PointsFile  string  `yaml:"points_file"`
	MaxSlopeDeg float64 `yaml:"max_slope_deg"`
}

// FootprintConfig holds the rack geometry settings.
type FootprintConfig struct {
	PanelWidthMm  float64 `yaml:"panel_width_mm"`
	PanelHeightMm float64 `yaml:"panel_height_mm"`
	PanelWatts    float64 `yaml:"panel_watts"`
	PanelsWide    int     `yaml:"panels_wide"`
	PanelRows     int     `yaml:"panel_rows"`
	TiltDeg       float64 `yaml:"tilt_deg"`
	PostHeightMm  float64 `yaml:"post_height_mm"`
}

// LayoutConfig holds grid placement settings.
type LayoutConfig struct {
	RowSpacingMm     float64 `yaml:"row_spacing_mm"`
	AzimuthDeg       float64 `yaml:"azimuth_deg"`
	OriginX          float64 `yaml:"origin_x"`
	OriginY          float64 `yaml:"origin_y"`
	TerrainFollowing bool    `yaml:"terrain_following"`
	Workers          int     `yaml:"workers"`
}

// OptimizerConfig holds the spacing search settings. A zero TargetGCR
// disables the search and the configured row spacing is used directly.
type OptimizerConfig struct {
	TargetGCR float64 `yaml:"target_gcr"`
	Tolerance float64 `yaml:"tolerance"`
}

// ExportConfig holds output file paths. Empty paths skip that output.
type ExportConfig struct {
	DXFFile  string `yaml:"dxf_file"`
	JSONFile string `yaml:"json_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values: a south-facing
// layout of 4×26 panel racks at 20° tilt on terrain up to 15° slope.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			MaxSlopeDeg: 15,
		},
		Footprint: FootprintConfig{
			PanelWidthMm:  1134,
			PanelHeightMm: 2278,
			PanelWatts:    550,
			PanelsWide:    26,
			PanelRows:     4,
			TiltDeg:       20,
			PostHeightMm:  1500,
		},
		Layout: LayoutConfig{
			RowSpacingMm:     6000,
			AzimuthDeg:       180,
			TerrainFollowing: true,
		},
		Optimizer: OptimizerConfig{
			TargetGCR: 0,
			Tolerance: 0.005,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
