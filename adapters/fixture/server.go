package fixture

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"

	"spikereview/domain/neuron"
	"spikereview/internal"
	"spikereview/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"
)

// Server is an in-memory stand-in for the spike-sorting server. It serves a
// fixed set of records and flips exclusion bits in memory only.
type Server struct {
	router *chi.Mux
	logger *internal.Logger

	mu       sync.Mutex
	records  []neuron.StatisticsRecord
	excluded map[neuron.UnitKey]struct{}
}

// LoadRecordsFile reads a neuron_data.json style file
func LoadRecordsFile(path string) ([]neuron.StatisticsRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var records []neuron.StatisticsRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.WithCode(errors.CodeValidationError, errors.Wrapf(err, "parse %s", path))
	}
	if err := neuron.CheckUniqueKeys(records); err != nil {
		return nil, err
	}
	return records, nil
}

// NewServer creates a fixture seeded with the records' own excluded flags
func NewServer(records []neuron.StatisticsRecord, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		records:  records,
		excluded: make(map[neuron.UnitKey]struct{}),
	}
	for _, r := range records {
		if r.Excluded {
			s.excluded[r.Key()] = struct{}{}
		}
	}

	s.router.Use(middleware.Recoverer)
	if logger.GetLevel() >= internal.LogLevelDebug {
		s.router.Use(middleware.Logger)
	}
	s.router.Get("/api/neurons", s.handleNeurons)
	s.router.Post("/api/toggle", s.handleToggle)
	return s
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Seed replaces the exclusion set, e.g. from a clusters_excluded.csv file
func (s *Server) Seed(set neuron.ExclusionSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded = make(map[neuron.UnitKey]struct{}, set.Len())
	for _, k := range set.Keys() {
		s.excluded[k] = struct{}{}
	}
	s.logger.Info("[Fixture] Seeded %d excluded units", set.Len())
}

// Excluded returns the current exclusion set
func (s *Server) Excluded() neuron.ExclusionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Server) snapshotLocked() neuron.ExclusionSet {
	keys := make([]neuron.UnitKey, 0, len(s.excluded))
	for k := range s.excluded {
		keys = append(keys, k)
	}
	return neuron.NewExclusionSet(keys...)
}

func (s *Server) handleNeurons(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]neuron.StatisticsRecord, len(s.records))
	for i, rec := range s.records {
		_, rec.Excluded = s.excluded[rec.Key()]
		out[i] = rec
	}
	s.mu.Unlock()

	s.logger.Debug("[Fixture] Serving %d neurons", len(out))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !gjson.ValidBytes(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	filename := gjson.GetBytes(body, "filename")
	clusterID := gjson.GetBytes(body, "cluster_id")
	if filename.String() == "" || !clusterID.Exists() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename and cluster_id are required"})
		return
	}
	key := neuron.NewUnitKey(filename.String(), int(clusterID.Int()))

	s.mu.Lock()
	if _, ok := s.excluded[key]; ok {
		delete(s.excluded, key)
	} else {
		s.excluded[key] = struct{}{}
	}
	set := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("[Fixture] Toggled %s (%d excluded)", key, set.Len())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"excluded": set.Tuples(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
