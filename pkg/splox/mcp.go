package splox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// MCPService browses the MCP server catalog and the caller's connections.
type MCPService struct {
	c *Client
}

// ListCatalog returns one catalog page. opts may be nil.
func (s *MCPService) ListCatalog(ctx context.Context, opts *CatalogOptions) (*MCPCatalogListResponse, error) {
	page, perPage := 1, defaultListLimit
	if opts != nil && opts.Page > 0 {
		page = opts.Page
	}
	if opts != nil && opts.PerPage > 0 {
		perPage = opts.PerPage
	}
	q := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if opts != nil {
		if opts.Search != "" {
			q.Set("search", opts.Search)
		}
		if opts.Featured {
			q.Set("featured", "true")
		}
	}
	var out MCPCatalogListResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, "/mcp-catalog", q, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCatalogItem fetches one catalog entry. The server wraps it in an
// "mcp_server" object; a bare item is accepted too.
func (s *MCPService) GetCatalogItem(ctx context.Context, itemID string) (*MCPCatalogItem, error) {
	var raw map[string]json.RawMessage
	if err := s.c.t.DoJSON(ctx, http.MethodGet, pathf("/mcp-catalog/%s", itemID), nil, nil, &raw, nil); err != nil {
		return nil, err
	}
	var out MCPCatalogItem
	if inner, ok := raw["mcp_server"]; ok {
		if err := json.Unmarshal(inner, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListConnections lists connections, optionally narrowed to one server
// and one end user.
func (s *MCPService) ListConnections(ctx context.Context, mcpServerID, endUserID string) (*MCPConnectionListResponse, error) {
	q := url.Values{}
	if mcpServerID != "" {
		q.Set("mcp_server_id", mcpServerID)
	}
	if endUserID != "" {
		q.Set("end_user_id", endUserID)
	}
	var out MCPConnectionListResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, "/mcp-connections", q, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MCPService) DeleteConnection(ctx context.Context, connectionID string) error {
	return s.c.t.DoJSON(ctx, http.MethodDelete, pathf("/mcp-connections/%s", connectionID), nil, nil, nil, nil)
}
