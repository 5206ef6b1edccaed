package apiclient

// HealthData mirrors the Data field of internal/cli/health.Response, the
// shape GET /healthz replies with.
type HealthData struct {
	Service   string `json:"service"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_sec"`
}

// Health fetches GET /healthz. Unlike every other endpoint it requires
// no token, but WithToken is harmless to call beforehand.
func (c *Client) Health() (*HealthData, error) {
	return getResource[HealthData](c, "/healthz")
}
