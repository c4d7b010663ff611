package main

import (
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

var realizedRe = regexp.MustCompile(`(?i)(7\s*D|seven\s*day)[^\n]*realiz|realiz[^\n]*(7\s*D|seven\s*day)`)

// verdictFor answers a trust prompt: supported when the context names the
// 7-day realized figure, with more confidence for signature-based strategies.
func verdictFor(user string) map[string]any {
	supported := realizedRe.MatchString(user)
	conf := 0.2
	reason := "context does not name the 7-day realized figure"
	if supported {
		conf = 0.7
		reason = "context names the 7-day realized figure"
		if strings.Contains(user, "Strategy: structural-") || strings.Contains(user, "Strategy: embedded-data") {
			conf = 0.9
		}
	}
	return map[string]any{"supported": supported, "confidence": conf, "reason": reason}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var sys, user string
		for _, m := range req.Messages {
			switch m.Role {
			case "system":
				sys = strings.TrimSpace(m.Content)
			case "user":
				user = m.Content
			}
		}
		if !strings.Contains(sys, "Respond with strict JSON only") || !strings.Contains(sys, "supported") {
			http.Error(w, "unexpected system", http.StatusBadRequest)
			return
		}
		b, _ := json.Marshal(verdictFor(user))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": string(b)}},
			},
		})
	})
	return mux
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
