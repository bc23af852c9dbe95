// rackplan — solar rack placement planner
//
// Reads a terrain survey, classifies the buildable area by slope, lays out
// rack rows along a chosen azimuth, and optionally searches row spacing for
// a target ground-coverage ratio. Results go to DXF and JSON.
//
// Build:
//   go build -o rackplan ./cmd/rackplan
//
// Usage:
//   rackplan -points site.xyz -max-slope 12 -azimuth 180 -dxf layout.dxf
//   rackplan -config site.yaml -target-gcr 0.45 -json layout.json
//   rackplan -demo -dxf demo.dxf
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/terrasolar/rackplan/internal/config"
	"github.com/terrasolar/rackplan/internal/engine"
	"github.com/terrasolar/rackplan/internal/export"
	"github.com/terrasolar/rackplan/internal/importer"
	"github.com/terrasolar/rackplan/internal/logger"
	"github.com/terrasolar/rackplan/internal/model"
	"github.com/terrasolar/rackplan/internal/terrain"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		points     = flag.String("points", "", "survey points file (.xyz, .csv, .txt, .dxf)")
		maxSlope   = flag.Float64("max-slope", 0, "maximum buildable slope in degrees")
		spacing    = flag.Float64("spacing", 0, "row spacing in mm")
		azimuth    = flag.Float64("azimuth", -1, "rack azimuth in degrees (0=N, 180=S)")
		targetGCR  = flag.Float64("target-gcr", 0, "search spacing for this ground-coverage ratio")
		dxfOut     = flag.String("dxf", "", "write layout drawing to this DXF file")
		jsonOut    = flag.String("json", "", "write layout document to this JSON file")
		logLevel   = flag.String("log-level", "", "log level (debug, info, warn, error)")
		demo       = flag.Bool("demo", false, "run on a synthetic 100m x 100m rolling site")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyFlags(cfg, *points, *maxSlope, *spacing, *azimuth, *targetGCR, *dxfOut, *jsonOut, *logLevel)

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *demo); err != nil {
		logger.Fatal("planning failed", zap.Error(err))
	}
}

// applyFlags overlays non-zero CLI flags on the loaded config.
func applyFlags(cfg *config.Config, points string, maxSlope, spacing, azimuth, targetGCR float64, dxfOut, jsonOut, logLevel string) {
	if points != "" {
		cfg.Site.PointsFile = points
	}
	if maxSlope > 0 {
		cfg.Site.MaxSlopeDeg = maxSlope
	}
	if spacing > 0 {
		cfg.Layout.RowSpacingMm = spacing
	}
	if azimuth >= 0 {
		cfg.Layout.AzimuthDeg = azimuth
	}
	if targetGCR > 0 {
		cfg.Optimizer.TargetGCR = targetGCR
	}
	if dxfOut != "" {
		cfg.Export.DXFFile = dxfOut
	}
	if jsonOut != "" {
		cfg.Export.JSONFile = jsonOut
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

func run(cfg *config.Config, demo bool) error {
	var pts []model.Point3
	var err error
	switch {
	case demo:
		pts = demoTerrain()
		logger.Info("using synthetic demo terrain", zap.Int("points", len(pts)))
	case cfg.Site.PointsFile == "":
		return errors.New("no survey points file given (use -points or site.points_file)")
	default:
		pts, err = loadPoints(cfg.Site.PointsFile)
		if err != nil {
			return err
		}
		logger.Info("survey loaded",
			zap.String("file", cfg.Site.PointsFile),
			zap.Int("points", len(pts)))
	}

	sfc, err := terrain.Build(pts)
	if err != nil {
		return fmt.Errorf("building surface: %w", err)
	}
	stats := sfc.Stats()
	logger.Info("surface built",
		zap.Int("faces", sfc.NumFaces()),
		zap.Float64("mean_slope_deg", stats.MeanSlopeDeg),
		zap.Float64("max_slope_deg", stats.MaxSlopeDeg))

	region, err := terrain.Classify(sfc, cfg.Site.MaxSlopeDeg)
	if err != nil {
		if errors.Is(err, terrain.ErrEmptyRegion) {
			logger.Warn("no buildable area at this slope threshold",
				zap.Float64("max_slope_deg", cfg.Site.MaxSlopeDeg))
		}
		return err
	}
	logger.Info("buildable area classified",
		zap.Float64("max_slope_deg", cfg.Site.MaxSlopeDeg),
		zap.Int("faces", len(region.TriIndices)),
		zap.Float64("area_m2", region.AreaMm2/1e6),
		zap.Float64("buildable_pct", sfc.BuildablePercent(cfg.Site.MaxSlopeDeg)))

	footprint := footprintFromConfig(cfg.Footprint)
	settings := settingsFromConfig(cfg.Layout)

	var layout model.LayoutResult
	if cfg.Optimizer.TargetGCR > 0 {
		opt := engine.NewSpacingOptimizer(settings)
		if cfg.Optimizer.Tolerance > 0 {
			opt.Tolerance = cfg.Optimizer.Tolerance
		}
		res, err := opt.Optimize(sfc, region, footprint, cfg.Optimizer.TargetGCR)
		if err != nil {
			return err
		}
		if !res.Converged {
			logger.Warn("target GCR not reachable, using closest spacing",
				zap.Float64("target_gcr", res.TargetGCR),
				zap.Float64("achieved_gcr", res.AchievedGCR),
				zap.Float64("spacing_mm", res.SpacingMm),
				zap.Int("iterations", res.Iterations))
		} else {
			logger.Info("spacing search converged",
				zap.Float64("spacing_mm", res.SpacingMm),
				zap.Float64("achieved_gcr", res.AchievedGCR),
				zap.Int("iterations", res.Iterations))
		}
		layout = res.Layout
	} else {
		layout, err = engine.NewPlanner(settings).Generate(sfc, region, footprint)
		if err != nil {
			return err
		}
	}

	logger.Info("layout generated",
		zap.Int("racks", layout.RackCount),
		zap.Int("panels", layout.PanelCount),
		zap.Float64("capacity_kw", layout.CapacityKw),
		zap.Float64("gcr", layout.AchievedGCR),
		zap.Float64("spacing_mm", layout.RowSpacingMm),
		zap.Float64("azimuth_deg", layout.AzimuthDeg))

	if cfg.Export.DXFFile != "" {
		if err := export.ExportDXF(cfg.Export.DXFFile, sfc, region, layout, footprint); err != nil {
			return err
		}
		logger.Info("dxf written", zap.String("file", cfg.Export.DXFFile))
	}
	if cfg.Export.JSONFile != "" {
		if err := export.SaveLayoutJSON(cfg.Export.JSONFile, footprint, layout); err != nil {
			return err
		}
		logger.Info("json written", zap.String("file", cfg.Export.JSONFile))
	}
	return nil
}

// demoTerrain samples a gently rolling 100m x 100m site at 5m resolution.
func demoTerrain() []model.Point3 {
	return terrain.GridTerrain(100000, 100000, 5000, func(x, y float64) float64 {
		return 2000*math.Sin(x/30000) + 1500*math.Cos(y/25000)
	})
}

// loadPoints reads survey points, choosing the importer by file extension.
// Per-row import errors are logged and the good rows kept.
func loadPoints(path string) ([]model.Point3, error) {
	var res importer.ImportResult
	if strings.EqualFold(filepath.Ext(path), ".dxf") {
		res = importer.ImportDXF(path)
	} else {
		res = importer.ImportXYZ(path)
	}

	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	for _, e := range res.Errors {
		logger.Error(e)
	}
	if len(res.Points) == 0 {
		return nil, fmt.Errorf("no usable points in %s", path)
	}
	return res.Points, nil
}

// footprintFromConfig builds the rack footprint from config values, falling
// back to the default panel when dimensions are unset.
func footprintFromConfig(fc config.FootprintConfig) model.RackFootprint {
	panel := model.DefaultPanelSpec()
	if fc.PanelWidthMm > 0 {
		panel.WidthMm = fc.PanelWidthMm
	}
	if fc.PanelHeightMm > 0 {
		panel.HeightMm = fc.PanelHeightMm
	}
	if fc.PanelWatts > 0 {
		panel.PowerWatts = fc.PanelWatts
	}
	return model.NewRackFootprint(panel, fc.PanelsWide, fc.PanelRows, fc.TiltDeg, fc.PostHeightMm)
}

func settingsFromConfig(lc config.LayoutConfig) engine.LayoutSettings {
	return engine.LayoutSettings{
		RowSpacingMm:     lc.RowSpacingMm,
		AzimuthDeg:       lc.AzimuthDeg,
		OriginX:          lc.OriginX,
		OriginY:          lc.OriginY,
		TerrainFollowing: lc.TerrainFollowing,
		Workers:          lc.Workers,
	}
}
