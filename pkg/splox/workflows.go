package splox

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"splox-go/internal/domain"
	"splox-go/internal/runwait"
)

const defaultListLimit = 20

var _ runwait.EventSource = (*Stream)(nil)

// WorkflowsService covers workflow definitions, runs and workflow secrets.
type WorkflowsService struct {
	c *Client
}

func listQuery(opts *ListOptions) url.Values {
	q := url.Values{}
	limit := defaultListLimit
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}
	q.Set("limit", strconv.Itoa(limit))
	if opts != nil {
		if opts.Cursor != "" {
			q.Set("cursor", opts.Cursor)
		}
		if opts.Search != "" {
			q.Set("search", opts.Search)
		}
	}
	return q
}

// List returns one page of the caller's workflows. opts may be nil.
func (s *WorkflowsService) List(ctx context.Context, opts *ListOptions) (*WorkflowListResponse, error) {
	var out WorkflowListResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, "/workflows", listQuery(opts), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a workflow with its latest version graph.
func (s *WorkflowsService) Get(ctx context.Context, workflowID string) (*WorkflowFull, error) {
	var out WorkflowFull
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/workflows/%s", workflowID), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLatestVersion returns the newest version of a workflow.
func (s *WorkflowsService) GetLatestVersion(ctx context.Context, workflowID string) (*WorkflowVersion, error) {
	var out WorkflowVersion
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/workflows/%s/versions/latest", workflowID), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStartNodes lists the entry nodes of a workflow version.
func (s *WorkflowsService) GetStartNodes(ctx context.Context, workflowVersionID string) (*StartNodesResponse, error) {
	var out StartNodesResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/workflows/%s/start-nodes", workflowVersionID), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVersions lists every version of a workflow.
func (s *WorkflowsService) ListVersions(ctx context.Context, workflowID string) (*WorkflowVersionListResponse, error) {
	var out WorkflowVersionListResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/workflows/%s/versions", workflowID), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Run triggers a run and returns its id without waiting.
func (s *WorkflowsService) Run(ctx context.Context, params RunParams) (*RunResponse, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	var out RunResponse
	if err := s.c.t.DoJSON(ctx, http.MethodPost, "/workflow-requests/run", nil, params, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Listen opens the event stream of a run. The caller must Close it.
func (s *WorkflowsService) Listen(ctx context.Context, workflowRequestID string) (*Stream, error) {
	return s.c.t.Stream(ctx, pathf("/workflow-requests/%s/listen", workflowRequestID), nil)
}

// GetExecutionTree returns the node-by-node execution snapshot of a run.
func (s *WorkflowsService) GetExecutionTree(ctx context.Context, workflowRequestID string) (*ExecutionTreeResponse, error) {
	var out ExecutionTreeResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/workflow-requests/%s/execution-tree", workflowRequestID), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHistory pages through past runs related to workflowRequestID.
func (s *WorkflowsService) GetHistory(ctx context.Context, workflowRequestID string, opts *ListOptions) (*HistoryResponse, error) {
	var out HistoryResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/workflow-requests/%s/history", workflowRequestID), listQuery(opts), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stop asks the server to stop a running workflow.
func (s *WorkflowsService) Stop(ctx context.Context, workflowRequestID string) error {
	return s.c.t.DoJSON(ctx, http.MethodPost, pathf("/workflow-requests/%s/stop", workflowRequestID), nil, nil, nil, nil)
}

// RunAndWaitOption tunes one RunAndWait call.
type RunAndWaitOption func(*runwait.Options)

// WithRunTimeout overrides the client's run-and-wait deadline.
func WithRunTimeout(d time.Duration) RunAndWaitOption {
	return func(o *runwait.Options) { o.Timeout = d }
}

// WithStrictDeadline also bounds each stream read by the deadline, so a
// stalled connection cannot outlive it.
func WithStrictDeadline() RunAndWaitOption {
	return func(o *runwait.Options) { o.StrictDeadline = true }
}

// WithEventHandler observes every stream event in order.
func WithEventHandler(fn func(StreamEvent)) RunAndWaitOption {
	return func(o *runwait.Options) { o.OnEvent = fn }
}

// WithStateHandler observes state transitions.
func WithStateHandler(fn func(RunState)) RunAndWaitOption {
	return func(o *runwait.Options) { o.OnState = fn }
}

// WithRunIDHandler receives the run id once the run is triggered.
func WithRunIDHandler(fn func(workflowRequestID string)) RunAndWaitOption {
	return func(o *runwait.Options) { o.OnTriggered = fn }
}

// RunAndWait triggers a run, follows its stream until the run completes,
// fails or is stopped, and returns the final execution tree. When the
// deadline passes first it returns a *TimeoutError and fetches nothing.
// Other errors are returned as produced by the failing call.
func (s *WorkflowsService) RunAndWait(ctx context.Context, params RunParams, opts ...RunAndWaitOption) (*ExecutionTreeResponse, error) {
	return runwait.Run(ctx, s.runDeps(params), s.runOptions(opts))
}

// RunAndWaitAsync is RunAndWait in a background goroutine. The channel
// yields one result and is closed. Cancel ctx to abandon the wait.
func (s *WorkflowsService) RunAndWaitAsync(ctx context.Context, params RunParams, opts ...RunAndWaitOption) <-chan RunAndWaitResult {
	return runwait.Start(ctx, s.runDeps(params), s.runOptions(opts))
}

func (s *WorkflowsService) runOptions(opts []RunAndWaitOption) runwait.Options {
	o := runwait.Options{Timeout: s.c.runTimeout, Logger: s.c.logger}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (s *WorkflowsService) runDeps(params RunParams) runwait.Deps[*ExecutionTreeResponse] {
	return runwait.Deps[*ExecutionTreeResponse]{
		Trigger: func(ctx context.Context) (string, error) {
			resp, err := s.Run(ctx, params)
			if err != nil {
				return "", err
			}
			return resp.WorkflowRequestID, nil
		},
		Open: func(ctx context.Context, runID string) (runwait.EventSource, error) {
			stream, err := s.Listen(ctx, runID)
			if err != nil {
				return nil, err
			}
			return stream, nil
		},
		Fetch: s.GetExecutionTree,
	}
}

// --- Secrets ---

func endUserQuery(endUserID string) url.Values {
	if endUserID == "" {
		return nil
	}
	return url.Values{"end_user_id": {endUserID}}
}

type secretBody struct {
	Key       string `json:"key"`
	Value     string `json:"value,omitempty"`
	S3URL     string `json:"s3_url,omitempty"`
	EndUserID string `json:"end_user_id,omitempty"`
}

// ListSecrets lists secret metadata of a workflow. A non-empty endUserID
// lists that end user's secrets instead of the owner's.
func (s *WorkflowsService) ListSecrets(ctx context.Context, workflowID, endUserID string) ([]SecretMetadata, error) {
	var out []SecretMetadata
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/workflows/%s/secrets", workflowID), endUserQuery(endUserID), nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// SetEnvSecret creates or replaces an environment-variable secret.
func (s *WorkflowsService) SetEnvSecret(ctx context.Context, workflowID, key, value, endUserID string) (*SecretActionResponse, error) {
	if key == "" {
		return nil, domain.NewDomainError("SetEnvSecret", domain.ErrInvalidInput, "key is required")
	}
	var out SecretActionResponse
	body := secretBody{Key: key, Value: value, EndUserID: endUserID}
	if err := s.c.t.DoJSON(ctx, http.MethodPost, pathf("/workflows/%s/secrets/env", workflowID), nil, body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetFileSecret creates or replaces a file secret stored at s3URL.
func (s *WorkflowsService) SetFileSecret(ctx context.Context, workflowID, key, s3URL, endUserID string) (*SecretActionResponse, error) {
	if key == "" {
		return nil, domain.NewDomainError("SetFileSecret", domain.ErrInvalidInput, "key is required")
	}
	var out SecretActionResponse
	body := secretBody{Key: key, S3URL: s3URL, EndUserID: endUserID}
	if err := s.c.t.DoJSON(ctx, http.MethodPost, pathf("/workflows/%s/secrets/file", workflowID), nil, body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSecret removes a secret. A non-empty endUserID targets that end user.
func (s *WorkflowsService) DeleteSecret(ctx context.Context, workflowID, key, endUserID string) (*SecretActionResponse, error) {
	var out SecretActionResponse
	if err := s.c.t.DoJSON(ctx, http.MethodDelete, pathf("/workflows/%s/secrets/%s", workflowID, key), endUserQuery(endUserID), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEndUserSecrets summarizes stored secrets per end user.
func (s *WorkflowsService) ListEndUserSecrets(ctx context.Context, workflowID string) ([]EndUserSecretsSummary, error) {
	var out []EndUserSecretsSummary
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/workflows/%s/secrets/end-users", workflowID), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateSecretsLink creates a public link an end user opens to submit
// their secrets.
func (s *WorkflowsService) GenerateSecretsLink(ctx context.Context, workflowID, endUserID string) (*SecretsLinkResponse, error) {
	var out SecretsLinkResponse
	body := map[string]string{"end_user_id": endUserID}
	if err := s.c.t.DoJSON(ctx, http.MethodPost, pathf("/workflows/%s/secrets/generate-link", workflowID), nil, body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
