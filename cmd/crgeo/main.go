package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/LdDl/commonroad"
	"github.com/LdDl/commonroad/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
)

var (
	fileName   = flag.String("file", "map.osm", "Filename of Lanelet2 map (*.osm, *.xml or *.osm.pbf)")
	configName = flag.String("config", "", "Filename of YAML configuration. Defaults are used if empty")
	out        = flag.String("out", "map.csv", "Filename of 'Comma-Separated Values' (CSV) formatted file. E.g.: if file name is 'map.csv' then 3 files will be produced: 'map_lanelets.csv', 'map_lanes.csv', 'map_regulatory.csv'")
	geomFormat = flag.String("geomf", "", "Format of output geometry. Expected values: wkt / geojson / polyline. Overrides configuration if set")
	originLat  = flag.Float64("lat", 0, "Latitude of local frame origin. Used with -lon for nodes without 'local_x'/'local_y' tags")
	originLon  = flag.Float64("lon", 0, "Longitude of local frame origin")
	serveAddr  = flag.String("serve", "", "Serve HTTP API on given address after export (e.g. ':8080'). Empty to skip")
	verbose    = flag.Bool("verbose", false, "Print progress of parsing")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := commonroad.DefaultConfig()
	if *configName != "" {
		loaded, err := commonroad.LoadConfig(*configName)
		if err != nil {
			logger.Error("Can't load configuration", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *geomFormat != "" {
		cfg.Export.GeometryFormat = *geomFormat
	}
	format, err := commonroad.ParseGeometryFormat(cfg.Export.GeometryFormat)
	if err != nil {
		logger.Error("Can't prepare geometry format", "error", err)
		os.Exit(1)
	}

	options := []func(*commonroad.Parser){
		commonroad.WithVerbose(*verbose),
		commonroad.WithParserConfig(cfg),
	}
	if *originLat != 0 || *originLon != 0 {
		options = append(options, commonroad.WithOrigin(*originLat, *originLon))
	}
	parser := commonroad.NewParser(*fileName, options...)

	st := time.Now()
	net, err := parser.ReadRoadNetwork()
	if err != nil {
		logger.Error("Can't read road network", "file", *fileName, "error", err)
		os.Exit(1)
	}
	logger.Info("Road network has been read", "lanelets", len(net.Lanelets()), "elapsed", time.Since(st))

	st = time.Now()
	lanes, err := net.CreateLanes()
	if err != nil {
		logger.Error("Can't create lanes", "error", err)
		os.Exit(1)
	}
	bar := progressbar.NewOptions(len(lanes),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][1/2][reset] Building curvilinear coordinate systems..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	for _, lane := range lanes {
		_, err := lane.CurvilinearCoordinateSystem()
		if err != nil {
			logger.Warn("Can't build curvilinear coordinate system", "lane", lane.ID, "error", err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	logger.Info("Lanes have been created", "lanes", len(lanes), "elapsed", time.Since(st))

	st = time.Now()
	err = net.ExportToCSV(*out, format)
	if err != nil {
		logger.Error("Can't export road network", "error", err)
		os.Exit(1)
	}
	logger.Info("Road network has been exported", "out", *out, "format", format.String(), "elapsed", time.Since(st))

	if *serveAddr == "" {
		return
	}
	reg := prometheus.NewRegistry()
	m := api.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(api.PromeHttpMiddleware(m))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	api.RoadNetworkRouter(r, net, m)

	logger.Info("Server started", "addr", *serveAddr)
	err = http.ListenAndServe(*serveAddr, r)
	if err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
