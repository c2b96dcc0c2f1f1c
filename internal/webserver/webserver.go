// Package webserver implements the archreader diagnostics dashboard.
package webserver

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"slices"
	"time"

	"github.com/desertwitch/archreader/internal/archcache"
	"github.com/desertwitch/archreader/internal/logging"
	"github.com/desertwitch/archreader/internal/metrics"
	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = parseTemplate()

// Dashboard serves archreader's diagnostics dashboard: open-archive
// counts, cache hit ratio, extraction throughput, and the log ring
// buffer, plus a JSON view of the same data for scripted polling.
type Dashboard struct {
	version string
	cache   *archcache.Cache
	started time.Time
}

// New returns a [Dashboard] reporting on cache's activity.
func New(cache *archcache.Cache, version string) *Dashboard {
	return &Dashboard{
		version: version,
		cache:   cache,
		started: time.Now(),
	}
}

// Serve serves the dashboard as part of an [http.Server].
func (d *Dashboard) Serve(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: d.mux()}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "(webserver) PANIC: %v\n", r)
				debug.PrintStack()
			}
		}()

		logging.Printf("serving dashboard on %s", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Printf("HTTP error: %v", err)
		}
	}()

	return srv
}

func (d *Dashboard) mux() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", d.dashboardHandler)
	r.HandleFunc("/metrics.json", d.metricsHandler)
	r.HandleFunc("/gc", d.gcHandler)
	r.HandleFunc("/reset", d.resetHandler)
	r.HandleFunc("/set/fd-cache-bypass/{value}", d.bypassHandler)

	return r
}

type dashboardData struct {
	Version              string   `json:"version"`
	Uptime               string   `json:"uptime"`
	AllocBytes           string   `json:"allocBytes"`
	SysBytes             string   `json:"sysBytes"`
	NumGC                uint32   `json:"numGc"`
	OpenArchives         int64    `json:"openArchives"`
	TotalOpened          int64    `json:"totalOpened"`
	TotalClosed          int64    `json:"totalClosed"`
	TotalCacheHits       int64    `json:"totalCacheHits"`
	TotalCacheMisses     int64    `json:"totalCacheMisses"`
	CacheHitRatio        string   `json:"cacheHitRatio"`
	TotalListed          int64    `json:"totalListed"`
	TotalExtracted       int64    `json:"totalExtracted"`
	TotalExtractedBytes  string   `json:"totalExtractedBytes"`
	AvgExtractSpeed      string   `json:"avgExtractSpeed"`
	TotalErrors          int64    `json:"totalErrors"`
	Logs                 []string `json:"logs"`
}

func (d *Dashboard) collect() dashboardData {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	lines := logging.Buffer.Lines()
	slices.Reverse(lines)

	return dashboardData{
		Version:             d.version,
		Uptime:              humanize.Time(d.started),
		AllocBytes:          humanize.IBytes(m.Alloc),
		SysBytes:            humanize.IBytes(m.Sys),
		NumGC:               m.NumGC,
		OpenArchives:        metrics.OpenArchives.Load(),
		TotalOpened:         metrics.TotalOpened.Load(),
		TotalClosed:         metrics.TotalClosed.Load(),
		TotalCacheHits:      metrics.TotalCacheHits.Load(),
		TotalCacheMisses:    metrics.TotalCacheMisses.Load(),
		CacheHitRatio:       cacheHitRatio(),
		TotalListed:         metrics.TotalListed.Load(),
		TotalExtracted:      metrics.TotalExtracted.Load(),
		TotalExtractedBytes: humanize.IBytes(extractedBytes()),
		AvgExtractSpeed:     avgExtractSpeed(),
		TotalErrors:         metrics.TotalErrors.Load(),
		Logs:                lines,
	}
}

func (d *Dashboard) dashboardHandler(w http.ResponseWriter, _ *http.Request) {
	data := d.collect()

	if err := indexTemplate.Execute(w, data); err != nil {
		logging.Printf("template execution error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (d *Dashboard) metricsHandler(w http.ResponseWriter, _ *http.Request) {
	data := d.collect()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (d *Dashboard) gcHandler(w http.ResponseWriter, _ *http.Request) {
	runtime.GC()
	debug.FreeOSMemory()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	logging.Printf("GC forced via API, current heap: %s", humanize.IBytes(m.Alloc))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "GC forced, current heap: %s.\n", humanize.IBytes(m.Alloc))
}

func (d *Dashboard) resetHandler(w http.ResponseWriter, _ *http.Request) {
	metrics.Reset()
	logging.Println("metrics reset via API")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Metrics reset.")
}

func (d *Dashboard) bypassHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	val, err := parseBool(vars["value"])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid boolean value: %v", err), http.StatusBadRequest)

		return
	}

	d.cache.SetBypass(val)
	logging.Printf("FD cache bypass set via API: %t", val)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "FD cache bypass set: %t.\n", val)
}
