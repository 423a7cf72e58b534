package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/jsru/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for code evaluation",
	Long: `Start an HTTP server that provides REST endpoints for evaluation.

Endpoints:
  POST   /eval                 Evaluate code (stateless, pooled context)
  POST   /contexts             Create context, returns {"context_id":"..."}
  POST   /contexts/{id}/eval   Evaluate in context (state persists)
  POST   /contexts/{id}/call   Call a function defined in the context
  DELETE /contexts/{id}        Close context
  GET    /health               Health check`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "Per-evaluation timeout")
	serveCmd.Flags().Duration("ttl", 15*time.Minute, "Idle context expiry")
	rootCmd.AddCommand(serveCmd)
}

// contextManager tracks server-owned contexts. Contexts are single-owner,
// so each entry carries its own mutex and requests against one context
// are serialized.
type contextManager struct {
	contexts map[string]*serverContext
	mu       sync.RWMutex
	ttl      time.Duration

	evalOpts []engine.Option
}

type serverContext struct {
	ectx     *engine.Context
	mu       sync.Mutex
	lastUsed time.Time
}

func newContextManager(ttl time.Duration, opts ...engine.Option) *contextManager {
	cm := &contextManager{
		contexts: make(map[string]*serverContext),
		ttl:      ttl,
		evalOpts: opts,
	}
	go cm.cleanup()
	return cm
}

func (cm *contextManager) create(initCode string) (string, error) {
	ectx, err := engine.New(initCode, cm.evalOpts...)
	if err != nil {
		return "", err
	}

	id := generateContextID()
	cm.mu.Lock()
	cm.contexts[id] = &serverContext{
		ectx:     ectx,
		lastUsed: time.Now(),
	}
	cm.mu.Unlock()
	return id, nil
}

func (cm *contextManager) get(id string) (*serverContext, bool) {
	cm.mu.RLock()
	sc, ok := cm.contexts[id]
	cm.mu.RUnlock()
	if !ok {
		return nil, false
	}

	cm.mu.Lock()
	sc.lastUsed = time.Now()
	cm.mu.Unlock()
	return sc, true
}

func (cm *contextManager) close(id string) bool {
	cm.mu.Lock()
	sc, ok := cm.contexts[id]
	if ok {
		sc.ectx.Close()
		delete(cm.contexts, id)
	}
	cm.mu.Unlock()
	return ok
}

func (cm *contextManager) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cm.mu.Lock()
		now := time.Now()
		for id, sc := range cm.contexts {
			if now.Sub(sc.lastUsed) > cm.ttl {
				sc.ectx.Close()
				delete(cm.contexts, id)
			}
		}
		cm.mu.Unlock()
	}
}

func (cm *contextManager) closeAll() {
	cm.mu.Lock()
	for id, sc := range cm.contexts {
		sc.ectx.Close()
		delete(cm.contexts, id)
	}
	cm.mu.Unlock()
}

func generateContextID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}

type evalRequest struct {
	Code  string `json:"code"`
	Await *bool  `json:"await,omitempty"`
}

type evalResponse struct {
	Value any    `json:"value"`
	Error string `json:"error,omitempty"`
}

type createContextRequest struct {
	Init string `json:"init,omitempty"`
}

type createContextResponse struct {
	ContextID string `json:"context_id"`
}

type callFuncRequest struct {
	Name  string `json:"name"`
	Args  []any  `json:"args,omitempty"`
	Await *bool  `json:"await,omitempty"`
}

func awaitOpts(await *bool) []engine.EvalOption {
	if await != nil && !*await {
		return []engine.EvalOption{engine.WithAwait(false)}
	}
	return nil
}

func writeValue(w http.ResponseWriter, value any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(evalResponse{Error: err.Error()})
		return
	}
	json.NewEncoder(w).Encode(evalResponse{Value: value})
}

// newServeMux builds the HTTP surface. Split out from runServe so the
// handlers are testable without binding a port.
func newServeMux(cm *contextManager) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/eval", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req evalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Code == "" {
			http.Error(w, "code required", http.StatusBadRequest)
			return
		}

		value, err := engine.Eval(r.Context(), req.Code, awaitOpts(req.Await)...)
		writeValue(w, value, err)
	})

	mux.HandleFunc("/contexts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req createContextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id, err := cm.create(req.Init)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to create context: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createContextResponse{ContextID: id})
	})

	mux.HandleFunc("/contexts/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/contexts/")
		parts := strings.SplitN(path, "/", 2)
		contextID := parts[0]

		if contextID == "" {
			http.Error(w, "context_id required", http.StatusBadRequest)
			return
		}

		if r.Method == http.MethodDelete {
			if cm.close(contextID) {
				w.WriteHeader(http.StatusNoContent)
			} else {
				http.Error(w, "context not found", http.StatusNotFound)
			}
			return
		}

		if r.Method != http.MethodPost || len(parts) != 2 {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		sc, ok := cm.get(contextID)
		if !ok {
			http.Error(w, "context not found", http.StatusNotFound)
			return
		}

		// An interrupted evaluation can leave undrained jobs on the
		// context's event loop, so the entry is evicted instead of
		// being served again.
		evictOnInterrupt := func(err error) {
			if engine.IsInterrupt(err) {
				cm.close(contextID)
			}
		}

		switch parts[1] {
		case "eval":
			var req evalRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			if req.Code == "" {
				http.Error(w, "code required", http.StatusBadRequest)
				return
			}

			sc.mu.Lock()
			value, err := sc.ectx.Eval(r.Context(), req.Code, awaitOpts(req.Await)...)
			sc.mu.Unlock()
			evictOnInterrupt(err)
			writeValue(w, value, err)

		case "call":
			var req callFuncRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			if req.Name == "" {
				http.Error(w, "name required", http.StatusBadRequest)
				return
			}

			sc.mu.Lock()
			value, err := sc.ectx.Call(r.Context(), req.Name, req.Args, awaitOpts(req.Await)...)
			sc.mu.Unlock()
			evictOnInterrupt(err)
			writeValue(w, value, err)

		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})

	return mux
}

func runServe(cmd *cobra.Command, args []string) {
	port, _ := cmd.Flags().GetInt("port")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	var opts []engine.Option
	if timeout > 0 {
		opts = append(opts, engine.WithTimeout(timeout))
	}
	opts = append(opts, engine.WithConsole(false))

	cm := newContextManager(ttl, opts...)
	defer cm.closeAll()

	addr := fmt.Sprintf(":%d", port)
	fmt.Fprintf(os.Stderr, "jsru serve listening on %s\n", addr)

	server := &http.Server{
		Addr:    addr,
		Handler: newServeMux(cm),
	}
	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
