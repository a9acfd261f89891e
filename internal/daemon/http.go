package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/theirongolddev/ledgr/internal/ledgerapi"
	"github.com/theirongolddev/ledgr/internal/model"
)

// response mirrors the ledger API envelope.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// Handler returns the daemon's HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Mirror-Fetched-At"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)

		r.Get("/v1/status", s.handleStatus)
		r.Get("/v1/events", s.handleEvents)
		r.Get("/v1/stream", s.handleStream)

		r.Route("/api", func(r chi.Router) {
			r.Get("/transactions", s.handleTransactions)
			r.Get("/transactions/daily", s.handleDaily)
			r.Get("/accounts", s.handleAccounts)
			r.Get("/categories", s.handleCategories)
		})
	})
	return r
}

func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, body response) {
	body.Success = code < 400
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// ready returns the served mirror, or answers 503 when nothing has synced.
func (s *Service) ready(w http.ResponseWriter) (*mirror, bool) {
	m := s.current()
	if m == nil {
		writeJSON(w, http.StatusServiceUnavailable, response{Message: "mirror has not synced yet"})
		return nil, false
	}
	w.Header().Set("X-Mirror-Fetched-At", m.fetchedAt.UTC().Format(time.RFC3339))
	return m, true
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.eventsAfter(0))
}

func (s *Service) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	m, ok := s.ready(w)
	if !ok {
		return
	}
	ws := make([]ledgerapi.Transaction, len(m.transactions))
	for i, tx := range m.transactions {
		ws[i] = ledgerapi.FromModel(tx)
	}
	writeJSON(w, http.StatusOK, response{Data: ws, Count: len(ws)})
}

func (s *Service) handleDaily(w http.ResponseWriter, _ *http.Request) {
	m, ok := s.ready(w)
	if !ok {
		return
	}
	ws := make([]ledgerapi.TransactionGroup, len(m.days))
	for i, g := range m.days {
		ws[i] = ledgerapi.GroupFromModel(g)
	}
	writeJSON(w, http.StatusOK, response{Data: ws, Count: len(ws)})
}

func (s *Service) handleAccounts(w http.ResponseWriter, _ *http.Request) {
	m, ok := s.ready(w)
	if !ok {
		return
	}
	ws := make([]ledgerapi.Account, len(m.accounts))
	for i, a := range m.accounts {
		ws[i] = ledgerapi.AccountFromModel(a)
	}
	writeJSON(w, http.StatusOK, response{Data: ws, Count: len(ws)})
}

func (s *Service) handleCategories(w http.ResponseWriter, r *http.Request) {
	var typ model.TxType
	if q := r.URL.Query().Get("type"); q != "" {
		t, err := model.ParseTxType(q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, response{Message: fmt.Sprintf("unknown category type %q", q)})
			return
		}
		typ = t
	}

	m, ok := s.ready(w)
	if !ok {
		return
	}
	cats := m.categories(typ)
	ws := make([]ledgerapi.Category, len(cats))
	for i, c := range cats {
		ws[i] = ledgerapi.CategoryFromModel(c)
	}
	writeJSON(w, http.StatusOK, response{Data: ws, Count: len(ws)})
}

// handleStream sends server-sent events. A reconnecting client that sends
// Last-Event-ID gets the buffered events it missed; a new client gets the
// current snapshot.
func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	var lastID int64
	if after, err := strconv.ParseInt(r.Header.Get("Last-Event-ID"), 10, 64); err == nil && after > 0 {
		for _, ev := range s.eventsAfter(after) {
			writeSSE(w, ev)
			lastID = ev.ID
		}
	} else {
		st := s.snapshotStatus()
		writeSSE(w, Event{
			Type:      EventSnapshot,
			Timestamp: s.now(),
			Snapshot:  st.Summary,
		})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			if ev.ID <= lastID {
				continue // already replayed
			}
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
