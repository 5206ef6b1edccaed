package apiclient

// GroupStatus is one group's slot accounting, mirroring
// pkg/api/handlers.groupStatusView.
type GroupStatus struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Slots     int    `json:"slots"`
	Strategy  string `json:"strategy"`
	UsedSlots int    `json:"used_slots"`
	Ready     int    `json:"ready"`
}

// Status is the scheduler's global and per-group accounting,
// mirroring pkg/api/handlers.statusView.
type Status struct {
	GlobalSlots int           `json:"global_slots"`
	UsedSlots   int           `json:"used_slots"`
	Groups      []GroupStatus `json:"groups"`
}

// GetStatus fetches GET /v1/status.
func (c *Client) GetStatus() (*Status, error) {
	return getResource[Status](c, "/v1/status")
}

func getResource[T any](c *Client, path string) (*T, error) {
	var result T
	if err := c.get(path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
