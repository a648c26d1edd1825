package models

import "strings"

// Permissions checked by the HTTP API
const (
	PermCatalogRead   = "catalog:read"
	PermRoomsRead     = "rooms:read"
	PermRoomsWrite    = "rooms:write"
	PermSessionsRead  = "sessions:read"
	PermSessionsWrite = "sessions:write"
	PermAdminStats    = "admin:stats"
)

// ApiClient is a caller configured through API_KEYS
type ApiClient struct {
	Name        string   `json:"name"`
	ApiKey      string   `json:"-"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if client has specific permission.
// Supports wildcard permissions like "rooms:*"
func (c *ApiClient) HasPermission(required string) bool {
	if c == nil || !c.IsActive {
		return false
	}

	for _, perm := range c.Permissions {
		if perm == required || perm == "*" {
			return true
		}

		// "rooms:*" matches "rooms:read"
		if strings.HasSuffix(perm, ":*") {
			prefix := strings.TrimSuffix(perm, "*")
			if strings.HasPrefix(required, prefix) {
				return true
			}
		}
	}

	return false
}

// MaskedApiKey returns first 8 characters of API key for logging
func (c *ApiClient) MaskedApiKey() string {
	if len(c.ApiKey) < 8 {
		return "***"
	}
	return c.ApiKey[:8] + "..."
}
