package domain

// MCPCatalogItem is a tool server listed in the public catalog.
type MCPCatalogItem struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	URL           string         `json:"url"`
	TransportType string         `json:"transport_type"`
	AuthType      string         `json:"auth_type"`
	IsFeatured    bool           `json:"is_featured"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
	Description   string         `json:"description,omitempty"`
	AuthConfig    map[string]any `json:"auth_config,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	Category      string         `json:"category,omitempty"`
	DisplayOrder  *int           `json:"display_order,omitempty"`
}

type MCPCatalogListResponse struct {
	MCPServers  []MCPCatalogItem `json:"mcp_servers"`
	CurrentPage int              `json:"current_page"`
	PerPage     int              `json:"per_page"`
	TotalCount  int              `json:"total_count"`
	TotalPages  int              `json:"total_pages"`
}

// CatalogOptions filters a catalog listing.
type CatalogOptions struct {
	Page     int
	PerPage  int
	Search   string
	Featured bool
}

// MCPConnection is a user's (or end user's) credentialed connection to a
// tool server.
type MCPConnection struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	URL           string         `json:"url"`
	TransportType string         `json:"transport_type"`
	AuthType      string         `json:"auth_type"`
	CreatedAt     string         `json:"created_at"`
	ImageURL      string         `json:"image_url,omitempty"`
	AuthConfig    map[string]any `json:"auth_config,omitempty"`
	EndUserID     string         `json:"end_user_id,omitempty"`
}

type MCPConnectionListResponse struct {
	Connections []MCPConnection `json:"connections"`
	Total       int             `json:"total"`
}
