package monitor

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"tailscale.com/tsweb"

	"github.com/banshee-data/livox.sim/internal/lidar/frames"
	"github.com/banshee-data/livox.sim/internal/lidar/sensor"
	"github.com/banshee-data/livox.sim/internal/lidar/storage/sqlite"
)

//go:embed status.html
var StatusHTML embed.FS

// WebServer serves the simulator status, the latest frame and the debug
// routes of the frame store.
type WebServer struct {
	address     string
	server      *http.Server
	store       *sqlite.FrameStore
	runID       string
	forwardAddr string
	snapshots   *SnapshotStore
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	// Store is optional; without it /api/frames and tailsql are absent.
	Store *sqlite.FrameStore
	RunID string
	// ForwardAddr is shown on the status page; empty means disabled.
	ForwardAddr string
}

// NewWebServer builds the server and its routes without listening.
func NewWebServer(config WebServerConfig) (*WebServer, error) {
	ws := &WebServer{
		address:     config.Address,
		store:       config.Store,
		runID:       config.RunID,
		forwardAddr: config.ForwardAddr,
		snapshots:   &SnapshotStore{},
	}
	mux, err := ws.setupRoutes()
	if err != nil {
		return nil, err
	}
	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws, nil
}

// Handler returns the routed handler.
func (ws *WebServer) Handler() http.Handler { return ws.server.Handler }

// Update publishes the latest frame to readers.
func (ws *WebServer) Update(f *frames.Frame, st sensor.FrameStats) {
	ws.snapshots.Update(f, st)
}

// Start serves until ctx is cancelled, then shuts down.
func (ws *WebServer) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("HTTP server routine stopped")
	return nil
}

func (ws *WebServer) setupRoutes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleStatus)
	mux.HandleFunc("/api/status", ws.handleStatusJSON)
	mux.HandleFunc("/api/frames", ws.handleFrames)
	mux.HandleFunc("/charts/frame", ws.handleFrameChart)

	if ws.store != nil {
		if err := ws.store.AttachAdminRoutes(mux); err != nil {
			return nil, err
		}
	}
	debug := tsweb.Debugger(mux)
	debug.KVFunc("Frames seen", func() any {
		_, n := ws.snapshots.Latest()
		return n
	})
	return mux, nil
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "livox-sim", "timestamp": "%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// frameStatus is the JSON view of sensor.FrameStats.
type frameStatus struct {
	Sequence      uint64  `json:"sequence"`
	StampNanos    int64   `json:"stamp_ns"`
	CursorStart   int64   `json:"cursor_start"`
	Fired         int     `json:"fired"`
	Dropped       int     `json:"dropped"`
	Points        int     `json:"points"`
	Returns       int     `json:"returns"`
	HitRatio      float64 `json:"hit_ratio"`
	MeanRange     float64 `json:"mean_range"`
	StdDevRange   float64 `json:"stddev_range"`
	MeanIntensity float64 `json:"mean_intensity"`
}

type statusResponse struct {
	RunID  string       `json:"run_id,omitempty"`
	Frames uint64       `json:"frames"`
	Last   *frameStatus `json:"last,omitempty"`
}

func (ws *WebServer) status() statusResponse {
	snap, n := ws.snapshots.Latest()
	resp := statusResponse{RunID: ws.runID, Frames: n}
	if snap != nil {
		st := snap.Stats
		resp.Last = &frameStatus{
			Sequence:      st.Sequence,
			StampNanos:    st.Stamp.Nanoseconds(),
			CursorStart:   st.CursorStart,
			Fired:         st.Fired,
			Dropped:       st.Dropped,
			Points:        st.Summary.Points,
			Returns:       st.Summary.Returns,
			HitRatio:      st.Summary.HitRatio,
			MeanRange:     st.Summary.MeanRange,
			StdDevRange:   st.Summary.StdDevRange,
			MeanIntensity: st.Summary.MeanIntensity,
		}
	}
	return resp
}

func (ws *WebServer) handleStatusJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ws.writeJSON(w, ws.status())
}

// handleFrames returns stored frame summaries of the current run.
// Query params:
//
//	run_id (optional, defaults to the current run)
//	limit (optional, default 100)
func (ws *WebServer) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if ws.store == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no frame store configured")
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runID = ws.runID
	}
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > 10000 {
			ws.writeJSONError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = v
	}
	recs, err := ws.store.ListFrames(runID, limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*sqlite.FrameRecord{}
	}
	ws.writeJSON(w, recs)
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tmpl, err := template.ParseFS(StatusHTML, "status.html")
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return
	}

	forwarding := "disabled"
	if ws.forwardAddr != "" {
		forwarding = "enabled (" + ws.forwardAddr + ")"
	}
	st := ws.status()
	snap, _ := ws.snapshots.Latest()
	var last sensor.FrameStats
	if snap != nil {
		last = snap.Stats
	}
	data := struct {
		RunID            string
		HTTPAddress      string
		ForwardingStatus string
		Frames           uint64
		Last             sensor.FrameStats
	}{
		RunID:            st.RunID,
		HTTPAddress:      ws.address,
		ForwardingStatus: forwarding,
		Frames:           st.Frames,
		Last:             last,
	}

	w.Header().Set("Content-Type", "text/html")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template: "+err.Error(), http.StatusInternalServerError)
	}
}
