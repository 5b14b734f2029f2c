package splox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var testRunParams = RunParams{
	WorkflowVersionID: "v1",
	ChatID:            "c1",
	StartNodeID:       "s1",
	Query:             "hello",
}

func statusLine(runID string, status Status) string {
	return fmt.Sprintf(`data: {"workflow_request":{"id":%q,"workflow_version_id":"v1","start_node_id":"s1","status":%q,"created_at":"2026-01-01T00:00:00Z"}}`, runID, status)
}

// sseLines writes lines as a stream, then holds the connection open until
// the client leaves when hold is set.
func sseLines(lines []string, hold bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, l := range lines {
			fmt.Fprintf(w, "%s\n\n", l)
			flusher.Flush()
		}
		if hold {
			<-r.Context().Done()
		}
	}
}

func TestWorkflowsListQuery(t *testing.T) {
	var queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		writeJSON(w, map[string]any{
			"workflows":  []map[string]any{{"id": "w1", "name": "Flow"}},
			"pagination": map[string]any{"limit": 20, "has_more": false},
		})
	})
	c := newTestClient(t, mux)

	resp, err := c.Workflows.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, resp.Workflows, 1)
	assert.Equal(t, "w1", resp.Workflows[0].ID)

	_, err = c.Workflows.List(context.Background(), &ListOptions{Limit: 5, Cursor: "abc", Search: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"limit=20", "cursor=abc&limit=5&search=x"}, queries)
}

func TestWorkflowsReadEndpoints(t *testing.T) {
	var paths []string
	mux := http.NewServeMux()
	record := func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		writeJSON(w, map[string]any{})
	}
	mux.HandleFunc("GET /api/v1/workflows/{id}", record)
	mux.HandleFunc("GET /api/v1/workflows/{id}/versions/latest", record)
	mux.HandleFunc("GET /api/v1/workflows/{id}/start-nodes", record)
	mux.HandleFunc("GET /api/v1/workflows/{id}/versions", record)
	mux.HandleFunc("GET /api/v1/workflow-requests/{id}/execution-tree", record)
	mux.HandleFunc("GET /api/v1/workflow-requests/{id}/history", record)
	mux.HandleFunc("POST /api/v1/workflow-requests/{id}/stop", record)
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Workflows.Get(ctx, "w 1")
	require.NoError(t, err)
	_, err = c.Workflows.GetLatestVersion(ctx, "w1")
	require.NoError(t, err)
	_, err = c.Workflows.GetStartNodes(ctx, "v1")
	require.NoError(t, err)
	_, err = c.Workflows.ListVersions(ctx, "w1")
	require.NoError(t, err)
	_, err = c.Workflows.GetExecutionTree(ctx, "r1")
	require.NoError(t, err)
	_, err = c.Workflows.GetHistory(ctx, "r1", nil)
	require.NoError(t, err)
	require.NoError(t, c.Workflows.Stop(ctx, "r1"))

	want := []string{
		"/api/v1/workflows/w%201",
		"/api/v1/workflows/w1/versions/latest",
		"/api/v1/workflows/v1/start-nodes",
		"/api/v1/workflows/w1/versions",
		"/api/v1/workflow-requests/r1/execution-tree",
		"/api/v1/workflow-requests/r1/history",
		"/api/v1/workflow-requests/r1/stop",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkflowsRunBody(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/workflow-requests/run", func(w http.ResponseWriter, r *http.Request) {
		body = decodeBody(t, r)
		writeJSON(w, map[string]any{"workflow_request_id": "r1"})
	})
	c := newTestClient(t, mux)

	params := testRunParams
	params.AdditionalParams = map[string]any{"lang": "en"}
	resp, err := c.Workflows.Run(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.WorkflowRequestID)

	want := map[string]any{
		"workflow_version_id": "v1",
		"chat_id":             "c1",
		"start_node_id":       "s1",
		"query":               "hello",
		"additional_params":   map[string]any{"lang": "en"},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkflowsRunValidatesLocally(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })
	c := newTestClient(t, mux)

	_, err := c.Workflows.Run(context.Background(), RunParams{ChatID: "c", StartNodeID: "s"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = c.Workflows.RunAndWait(context.Background(), RunParams{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Zero(t, calls.Load())
}

func TestWorkflowSecrets(t *testing.T) {
	type call struct {
		method, path, query string
		body                map[string]any
	}
	var mu sync.Mutex
	var calls []call
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/workflows/w1/", func(w http.ResponseWriter, r *http.Request) {
		cl := call{method: r.Method, path: r.URL.EscapedPath(), query: r.URL.RawQuery}
		if r.ContentLength > 0 {
			cl.body = decodeBody(t, r)
		}
		mu.Lock()
		calls = append(calls, cl)
		mu.Unlock()
		switch r.URL.Path {
		case "/api/v1/workflows/w1/secrets":
			writeJSON(w, []map[string]any{{"key": "OPENAI_KEY", "type": "env"}})
		case "/api/v1/workflows/w1/secrets/end-users":
			writeJSON(w, []map[string]any{{"end_user_id": "u1", "secret_count": 2}})
		case "/api/v1/workflows/w1/secrets/generate-link":
			writeJSON(w, map[string]any{"link": "https://app.splox.io/s/t", "token": "t"})
		default:
			writeJSON(w, map[string]any{"success": true})
		}
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	secrets, err := c.Workflows.ListSecrets(ctx, "w1", "")
	require.NoError(t, err)
	require.Len(t, secrets, 1)
	assert.Equal(t, "OPENAI_KEY", secrets[0].Key)

	_, err = c.Workflows.SetEnvSecret(ctx, "w1", "OPENAI_KEY", "sk", "u1")
	require.NoError(t, err)
	_, err = c.Workflows.SetFileSecret(ctx, "w1", "CERT", "s3://bucket/cert.pem", "")
	require.NoError(t, err)
	res, err := c.Workflows.DeleteSecret(ctx, "w1", "A/B", "u1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	users, err := c.Workflows.ListEndUserSecrets(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 2, users[0].SecretCount)

	link, err := c.Workflows.GenerateSecretsLink(ctx, "w1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "t", link.Token)

	want := []call{
		{method: "GET", path: "/api/v1/workflows/w1/secrets"},
		{method: "POST", path: "/api/v1/workflows/w1/secrets/env", body: map[string]any{"key": "OPENAI_KEY", "value": "sk", "end_user_id": "u1"}},
		{method: "POST", path: "/api/v1/workflows/w1/secrets/file", body: map[string]any{"key": "CERT", "s3_url": "s3://bucket/cert.pem"}},
		{method: "DELETE", path: "/api/v1/workflows/w1/secrets/A%2FB", query: "end_user_id=u1"},
		{method: "GET", path: "/api/v1/workflows/w1/secrets/end-users"},
		{method: "POST", path: "/api/v1/workflows/w1/secrets/generate-link", body: map[string]any{"end_user_id": "u1"}},
	}
	if diff := cmp.Diff(want, calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSetEnvSecretRequiresKey(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	_, err := c.Workflows.SetEnvSecret(context.Background(), "w1", "", "v", "")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func runServer(t *testing.T, stream http.HandlerFunc, treeStatus Status) (*http.ServeMux, *atomic.Int32) {
	t.Helper()
	var treeCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/workflow-requests/run", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"workflow_request_id": "r1"})
	})
	mux.HandleFunc("GET /api/v1/workflow-requests/r1/listen", stream)
	mux.HandleFunc("GET /api/v1/workflow-requests/r1/execution-tree", func(w http.ResponseWriter, r *http.Request) {
		treeCalls.Add(1)
		writeJSON(w, map[string]any{"execution_tree": map[string]any{
			"workflow_request_id": "r1",
			"status":              treeStatus,
			"created_at":          "2026-01-01T00:00:00Z",
			"nodes": []map[string]any{{
				"id": "n1", "node_id": "agent", "status": treeStatus,
				"output_data": map[string]any{"text": "hi"},
			}},
		}})
	})
	return mux, &treeCalls
}

func TestRunAndWaitCompletes(t *testing.T) {
	mux, treeCalls := runServer(t, sseLines([]string{
		"data: keepalive",
		statusLine("r1", StatusInProgress),
		`data: {"node_execution":{"id":"n1","workflow_request_id":"r1","node_id":"agent","workflow_version_id":"v1","status":"completed"}}`,
		statusLine("r1", StatusCompleted),
	}, true), StatusCompleted)
	c := newTestClient(t, mux)

	var runID string
	var events int
	var states []RunState
	tree, err := c.Workflows.RunAndWait(context.Background(), testRunParams,
		WithRunTimeout(5*time.Second),
		WithRunIDHandler(func(id string) { runID = id }),
		WithEventHandler(func(StreamEvent) { events++ }),
		WithStateHandler(func(s RunState) { states = append(states, s) }),
	)
	require.NoError(t, err)
	assert.Equal(t, "r1", runID)
	assert.Equal(t, 4, events)
	assert.Equal(t, StatusCompleted, tree.ExecutionTree.Status)
	assert.Equal(t, "hi", tree.ExecutionTree.Nodes[0].OutputData["text"])
	assert.EqualValues(t, 1, treeCalls.Load())
	assert.Equal(t, RunDone, states[len(states)-1])
}

func TestRunAndWaitFailedRunReturnsTree(t *testing.T) {
	mux, _ := runServer(t, sseLines([]string{statusLine("r1", StatusFailed)}, true), StatusFailed)
	c := newTestClient(t, mux)

	tree, err := c.Workflows.RunAndWait(context.Background(), testRunParams)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, tree.ExecutionTree.Status)
}

func TestRunAndWaitStreamEndsEarly(t *testing.T) {
	mux, treeCalls := runServer(t, sseLines([]string{statusLine("r1", StatusInProgress)}, false), StatusCompleted)
	c := newTestClient(t, mux)

	tree, err := c.Workflows.RunAndWait(context.Background(), testRunParams)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, tree.ExecutionTree.Status)
	assert.EqualValues(t, 1, treeCalls.Load())
}

func TestRunAndWaitTimesOut(t *testing.T) {
	keepalives := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-tick.C:
				fmt.Fprint(w, "data: keepalive\n\n")
				flusher.Flush()
			}
		}
	}
	mux, treeCalls := runServer(t, keepalives, StatusCompleted)
	c := newTestClient(t, mux)

	_, err := c.Workflows.RunAndWait(context.Background(), testRunParams, WithRunTimeout(50*time.Millisecond))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "r1", te.RunID)
	assert.Equal(t, 50*time.Millisecond, te.Timeout)
	assert.Zero(t, treeCalls.Load())
}

func TestRunAndWaitStrictDeadlineOnSilentStream(t *testing.T) {
	mux, treeCalls := runServer(t, sseLines(nil, true), StatusCompleted)
	c := newTestClient(t, mux)

	start := time.Now()
	_, err := c.Workflows.RunAndWait(context.Background(), testRunParams,
		WithRunTimeout(50*time.Millisecond), WithStrictDeadline())
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "r1", te.RunID)
	assert.NotErrorIs(t, err, ErrConnection)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, treeCalls.Load())
}

func TestRunAndWaitStrictDeadlineAfterHeaders(t *testing.T) {
	mux, _ := runServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}, StatusCompleted)
	c := newTestClient(t, mux)

	_, err := c.Workflows.RunAndWait(context.Background(), testRunParams,
		WithRunTimeout(50*time.Millisecond), WithStrictDeadline())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestListenWaitsPastRESTTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflow-requests/r1/listen", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: keepalive\n\n")
	})
	c := newTestClient(t, mux, WithTimeout(100*time.Millisecond))

	stream, err := c.Workflows.Listen(context.Background(), "r1")
	require.NoError(t, err)
	defer stream.Close()

	ev, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, ev.IsKeepalive())
}

func TestRunAndWaitTriggerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/workflow-requests/run", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	})
	c := newTestClient(t, mux)

	_, err := c.Workflows.RunAndWait(context.Background(), testRunParams)
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestRunAndWaitListenNotFound(t *testing.T) {
	mux, _ := runServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such run"}`, http.StatusNotFound)
	}, StatusCompleted)
	c := newTestClient(t, mux)

	_, err := c.Workflows.RunAndWait(context.Background(), testRunParams)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRunAndWaitAsyncCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mux, _ := runServer(t, sseLines([]string{statusLine("r1", StatusInProgress)}, true), StatusCompleted)
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c, err := New(WithAPIKey("sk-test"), WithBaseURL(srv.URL+"/api/v1"))
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := c.Workflows.RunAndWaitAsync(ctx, testRunParams, WithEventHandler(func(StreamEvent) { cancel() }))

	res, ok := <-results
	require.True(t, ok)
	assert.Nil(t, res.Value)
	assert.True(t, errors.Is(res.Err, context.Canceled), "err = %v", res.Err)
	_, ok = <-results
	assert.False(t, ok)
}

func TestWorkflowsListen(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflow-requests/r1/listen", sseLines([]string{
		"data: keepalive",
		statusLine("r1", StatusCompleted),
	}, false))
	c := newTestClient(t, mux)

	stream, err := c.Workflows.Listen(context.Background(), "r1")
	require.NoError(t, err)
	defer stream.Close()

	var kinds []EventKind
	for ev, err := range stream.All(context.Background()) {
		require.NoError(t, err)
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventKeepalive, EventStatusUpdate}, kinds)
}
