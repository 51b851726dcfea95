package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/resource"
	"github.com/kalambet/lexis/internal/session"
	"github.com/kalambet/lexis/internal/wotd"
)

const maxBodySize = 1 << 20 // 1MB

// Suggester lists bundled index words by prefix.
type Suggester interface {
	Suggest(ctx context.Context, prefix string) <-chan resource.Resource[[]string]
}

// Resolver resolves a word to dictionary entries.
type Resolver interface {
	Resolve(ctx context.Context, word string, recordRecent bool) <-chan resource.Resource[[]model.WordInfo]
	ResolveExact(ctx context.Context, word string, recordRecent bool) <-chan resource.Resource[[]model.WordInfo]
}

// FavoriteManager toggles and lists favorites.
type FavoriteManager interface {
	Like(ctx context.Context, entries []model.WordInfo) <-chan resource.Resource[struct{}]
	Unlike(ctx context.Context, words []string) <-chan resource.Resource[struct{}]
	List(ctx context.Context, prefix string) <-chan resource.Resource[[]string]
}

// RecentManager reads and prunes the lookup history.
type RecentManager interface {
	List(ctx context.Context, prefix string) <-chan resource.Resource[[]string]
	Delete(ctx context.Context, word string) <-chan resource.Resource[struct{}]
	Clear(ctx context.Context) <-chan resource.Resource[struct{}]
}

// WordOfDay reads and watches the word-of-the-day slot.
type WordOfDay interface {
	Load() (wotd.Pair, error)
	Watch(ctx context.Context) <-chan wotd.Pair
}

type AppDeps struct {
	Token     string // empty disables authentication
	Index     Suggester
	Resolver  Resolver
	Favorites FavoriteManager
	Recent    RecentManager
	Slot      WordOfDay
	Job       wotd.Runner      // optional; if nil, POST /word-of-the-day/run is 503
	Session   *session.Session // optional; if nil, session routes are 503
}

// LikeRequest is the body of POST /favorites and POST /session/like.
type LikeRequest struct {
	Entries []model.WordInfo `json:"entries"`
}

// UnlikeRequest is the body of DELETE /favorites and POST /session/unlike.
type UnlikeRequest struct {
	Words []string `json:"words"`
}

// QueryRequest is the body of POST /session/query.
type QueryRequest struct {
	Kind  string `json:"kind"`
	Query string `json:"query"`
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}

		r.Get("/words", handleListWords(deps))
		r.Get("/lookup/{word}", handleLookup(deps))

		r.Get("/favorites", handleListFavorites(deps))
		r.Post("/favorites", handleLike(deps))
		r.Delete("/favorites", handleUnlike(deps))

		r.Get("/recent", handleListRecent(deps))
		r.Delete("/recent", handleClearRecent(deps))
		r.Delete("/recent/{word}", handleDeleteRecent(deps))

		r.Get("/word-of-the-day", handleGetWordOfDay(deps))
		r.Post("/word-of-the-day/run", handleRunWordOfDay(deps))
		r.Get("/word-of-the-day/events", handleWordOfDayEvents(deps))

		r.Post("/session/query", handleSessionQuery(deps))
		r.Post("/session/like", handleSessionLike(deps))
		r.Post("/session/unlike", handleSessionUnlike(deps))
		r.Get("/session/events", handleSessionEvents(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleListWords(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")

		var stream <-chan resource.Resource[[]string]
		if parseBoolParam(r, "favorites", false) {
			stream = deps.Favorites.List(r.Context(), prefix)
		} else {
			stream = deps.Index.Suggest(r.Context(), prefix)
		}

		words, err := resource.Collect(stream)
		if err != nil {
			resourceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(words))
	}
}

func handleLookup(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		word := chi.URLParam(r, "word")
		record := parseBoolParam(r, "record", true)
		resolve := deps.Resolver.Resolve
		if parseBoolParam(r, "exact", false) {
			resolve = deps.Resolver.ResolveExact
		}
		stream := resolve(r.Context(), word, record)

		if parseBoolParam(r, "stream", false) {
			streamResources(w, stream)
			return
		}

		infos, err := resource.Collect(stream)
		if err != nil {
			resourceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, infos)
	}
}

func handleListFavorites(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		words, err := resource.Collect(deps.Favorites.List(r.Context(), r.URL.Query().Get("prefix")))
		if err != nil {
			resourceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(words))
	}
}

func handleLike(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LikeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Entries) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "entries are required")
			return
		}

		if _, err := resource.Collect(deps.Favorites.Like(r.Context(), req.Entries)); err != nil {
			resourceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "liked", "words": model.Words(req.Entries)})
	}
}

func handleUnlike(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnlikeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Words) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "words are required")
			return
		}

		if _, err := resource.Collect(deps.Favorites.Unlike(r.Context(), req.Words)); err != nil {
			resourceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "unliked", "words": req.Words})
	}
}

func handleListRecent(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		words, err := resource.Collect(deps.Recent.List(r.Context(), r.URL.Query().Get("prefix")))
		if err != nil {
			resourceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(words))
	}
}

func handleDeleteRecent(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		word := strings.TrimSpace(chi.URLParam(r, "word"))
		if word == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "word is required")
			return
		}
		if _, err := resource.Collect(deps.Recent.Delete(r.Context(), word)); err != nil {
			resourceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleClearRecent(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := resource.Collect(deps.Recent.Clear(r.Context())); err != nil {
			resourceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetWordOfDay(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Slot.Load()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read word of the day: %v", err)
			return
		}
		if p.Empty() {
			httpError(w, http.StatusNotFound, "not_found", "no word of the day yet")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleRunWordOfDay(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Job == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "word of the day job is not configured")
			return
		}

		res := deps.Job.Run(r.Context())
		code := http.StatusOK
		switch res.Outcome {
		case wotd.OutcomeFailure:
			code = http.StatusUnprocessableEntity
		case wotd.OutcomeRetry:
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, res)
	}
}

func handleWordOfDayEvents(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sse, ok := newEventWriter(w)
		if !ok {
			return
		}
		for p := range deps.Slot.Watch(r.Context()) {
			if err := sse.send("word_of_the_day", p); err != nil {
				return
			}
		}
	}
}

func handleSessionQuery(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireSession(w, deps) {
			return
		}
		var req QueryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		kind, ok := session.ParseKind(req.Kind)
		if !ok {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown query kind %q", req.Kind)
			return
		}

		deps.Session.Query(kind, req.Query)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled", "kind": string(kind)})
	}
}

func handleSessionLike(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireSession(w, deps) {
			return
		}
		var req LikeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Entries) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "entries are required")
			return
		}

		deps.Session.Like(req.Entries)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled", "kind": string(session.KindLike)})
	}
}

func handleSessionUnlike(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireSession(w, deps) {
			return
		}
		var req UnlikeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Words) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "words are required")
			return
		}

		deps.Session.Unlike(req.Words)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled", "kind": string(session.KindUnlike)})
	}
}

// handleSessionEvents forwards session updates as server-sent events. The
// session has a single update channel, so concurrent readers split it.
func handleSessionEvents(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireSession(w, deps) {
			return
		}
		sse, ok := newEventWriter(w)
		if !ok {
			return
		}
		updates := deps.Session.Updates()
		for {
			select {
			case <-r.Context().Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				if err := sse.send(string(u.Kind), u); err != nil {
					return
				}
			}
		}
	}
}

func requireSession(w http.ResponseWriter, deps AppDeps) bool {
	if deps.Session == nil {
		httpError(w, http.StatusServiceUnavailable, "api_error", "interactive session is not enabled")
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func parseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func nonNil(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}
