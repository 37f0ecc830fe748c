// Command server exposes a single HTTP endpoint for running queries
// against a graph supplied in the request body.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	"github.com/corvidgraph/cyql"
	"go.uber.org/zap"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	optsPath := flag.String("options", "", "path to a YAML options file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(flag.CommandLine.Output(), "building logger: %v\n", err)
		return
	}
	defer logger.Sync()

	opts := cyql.DefaultOptions()
	if *optsPath != "" {
		loaded, err := cyql.LoadOptions(*optsPath)
		if err != nil {
			logger.Fatal("loading options", zap.Error(err))
		}
		opts = loaded
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var body struct {
			Graph json.RawMessage `json:"graph"`
			Query string          `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(body.Graph) == 0 {
			writeError(w, http.StatusBadRequest, "missing field: graph")
			return
		}
		if body.Query == "" {
			writeError(w, http.StatusBadRequest, "missing field: query")
			return
		}

		c, err := cyql.Load(bytes.NewReader(body.Graph), opts, logger)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid graph: %v", err))
			return
		}

		res := c.Query(body.Query)
		if !res.Success {
			writeError(w, http.StatusUnprocessableEntity, res.Error)
			return
		}

		var graphBuf bytes.Buffer
		if err := c.Save(&graphBuf); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Result cyql.Result     `json:"result"`
			Graph  json.RawMessage `json:"graph"`
		}{Result: res, Graph: json.RawMessage(graphBuf.Bytes())})
	})

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("cyql server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
