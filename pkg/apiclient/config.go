package apiclient

// ReloadResult mirrors the object pkg/api/handlers.ConfigHandler.Reload returns.
type ReloadResult struct {
	GlobalSlots int `json:"global_slots"`
}

// ReloadConfig issues POST /v1/config/reload, an admin-only forced
// Snapshot+Configure cycle.
func (c *Client) ReloadConfig() (*ReloadResult, error) {
	return createResource[ReloadResult](c, "/v1/config/reload", nil)
}
