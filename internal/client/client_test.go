package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/set-night/rankbot/internal/config"
	"github.com/set-night/rankbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(&config.Config{CrawlBaseURL: srv.URL, ChatBaseURL: srv.URL})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestCrawlDefaultsForAbsentOptionalFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/crawl", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"knowledge_index":   map[string]any{"knowledge_state": "READY"},
			"low_trust_present": false,
		})
	})

	c := newTestClient(t, mux)
	art, err := c.Crawl(context.Background(), "rank things")
	require.NoError(t, err)

	assert.Empty(t, art.AllowedMetrics)
	assert.NotNil(t, art.AllowedMetrics)
	assert.Empty(t, art.BlockedMetrics)
	assert.Empty(t, art.DatasetPreview)
	assert.False(t, art.LowTrust)
}

func TestCrawlMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing low_trust_present",
			body: map[string]any{"knowledge_index": map[string]any{}},
		},
		{
			name: "missing knowledge_index",
			body: map[string]any{"low_trust_present": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/crawl", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.body)
			})

			c := newTestClient(t, mux)
			_, err := c.Crawl(context.Background(), "q")

			var beErr *domain.BackendError
			require.ErrorAs(t, err, &beErr)
			assert.Equal(t, "crawl", beErr.Op)
		})
	}
}

func TestCrawlTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	cfg := &config.Config{CrawlBaseURL: srv.URL, ChatBaseURL: srv.URL}
	srv.Close()

	c := New(cfg)
	_, err := c.Crawl(context.Background(), "q")

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "crawl", netErr.Op)
}

func TestCrawlBadStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/crawl", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := newTestClient(t, mux)
	_, err := c.Crawl(context.Background(), "q")

	var beErr *domain.BackendError
	require.ErrorAs(t, err, &beErr)
}

func testArtifacts() *domain.CrawlArtifacts {
	return &domain.CrawlArtifacts{
		KnowledgeIndex: map[string]any{"knowledge_state": "READY"},
		AllowedMetrics: []string{"country", "sector"},
		BlockedMetrics: []string{},
		DatasetPreview: []map[string]any{},
	}
}

func TestConverseClarificationMode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"mode":     "CLARIFICATION_ONLY",
			"response": "Which metric should I use?",
		})
	})
	// Clarification must not touch the chat store.
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected call to /start")
	})

	c := newTestClient(t, mux)
	out, err := c.Converse(context.Background(), "", "rank startups", testArtifacts())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeClarify, out.Kind)
	assert.Equal(t, "Which metric should I use?", out.Prompt)
	assert.Empty(t, out.SessionID)
}

func TestConverseMissingMode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"response": "hello"})
	})

	c := newTestClient(t, mux)
	_, err := c.Converse(context.Background(), "", "q", testArtifacts())

	var beErr *domain.BackendError
	require.ErrorAs(t, err, &beErr)
	assert.Equal(t, "chat/web", beErr.Op)
}

func TestConverseStartAssignsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"mode": "FULL_ANSWER", "response": "ok"})
	})
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rank startups", req["message"])

		writeJSON(t, w, map[string]any{
			"ok":      true,
			"chat_id": "abc123",
			"title":   "startups",
			"bot":     "Here is the ranking.",
			"messages": []map[string]string{
				{"role": "user", "text": "rank startups"},
				{"role": "assistant", "text": "Here is the ranking."},
			},
		})
	})

	c := newTestClient(t, mux)
	out, err := c.Converse(context.Background(), "", "rank startups", testArtifacts())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeAnswer, out.Kind)
	assert.Equal(t, "abc123", out.SessionID)
	assert.Equal(t, "startups", out.Title)
	assert.Equal(t, "Here is the ranking.", out.Text)
	require.Len(t, out.History, 2)
	assert.Equal(t, domain.RoleUser, out.History[0].Role)
}

func TestConverseStartMissingChatID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"mode": "FULL_ANSWER"})
	})
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"ok": true, "bot": "hi"})
	})

	c := newTestClient(t, mux)
	_, err := c.Converse(context.Background(), "", "q", testArtifacts())

	var beErr *domain.BackendError
	require.ErrorAs(t, err, &beErr)
	assert.Equal(t, "start", beErr.Op)
}

func TestConverseReplyWithTable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"mode": "FULL_ANSWER"})
	})
	mux.HandleFunc("/chat/abc123/reply", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"ok":       true,
			"bot_text": "Top 2 by revenue:",
			"columns":  []string{"Name", "Revenue"},
			"rows": []map[string]any{
				{"Name": "A", "Revenue": 10},
				{"Name": "B", "Revenue": 7},
			},
		})
	})

	c := newTestClient(t, mux)
	out, err := c.Converse(context.Background(), "abc123", "rank by revenue", testArtifacts())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeTable, out.Kind)
	assert.Equal(t, []string{"Name", "Revenue"}, out.Columns)
	assert.Len(t, out.Rows, 2)
	assert.Nil(t, out.History)
}

func TestConverseReplyNotOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"mode": "FULL_ANSWER"})
	})
	mux.HandleFunc("/chat/abc123/reply", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"ok": false, "error": "chat_id not found"})
	})

	c := newTestClient(t, mux)
	_, err := c.Converse(context.Background(), "abc123", "q", testArtifacts())

	var beErr *domain.BackendError
	require.ErrorAs(t, err, &beErr)
	assert.Contains(t, beErr.Error(), "chat_id not found")
}

func TestDownloadURL(t *testing.T) {
	c := New(&config.Config{ChatBaseURL: "http://backend:8000"})
	assert.Equal(t,
		"http://backend:8000/chat/abc123/download?format=csv",
		c.DownloadURL("abc123", "csv"),
	)
}
