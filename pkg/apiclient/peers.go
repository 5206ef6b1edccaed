package apiclient

import "fmt"

// Availability mirrors pkg/api/handlers.availabilityView.
type Availability struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// Position mirrors pkg/api/handlers.positionView.
type Position struct {
	Username string `json:"username"`
	Filename string `json:"filename,omitempty"`
	Position int    `json:"position"`
}

// GetAvailability fetches GET /v1/peers/{username}/availability.
func (c *Client) GetAvailability(username string) (*Availability, error) {
	return getResource[Availability](c, fmt.Sprintf("/v1/peers/%s/availability", username))
}

// GetPosition fetches GET /v1/peers/{username}/position, or
// /v1/peers/{username}/position/{filename} when filename is non-empty.
func (c *Client) GetPosition(username, filename string) (*Position, error) {
	path := fmt.Sprintf("/v1/peers/%s/position", username)
	if filename != "" {
		path = fmt.Sprintf("%s/%s", path, filename)
	}
	return getResource[Position](c, path)
}

// AssignGroupResult mirrors the object pkg/api/handlers.AssignGroup returns.
type AssignGroupResult struct {
	Username string `json:"username"`
	Group    string `json:"group"`
}

// AssignGroup issues POST /v1/peers/{username}/group, an admin-only
// operator override of a peer's group assignment.
func (c *Client) AssignGroup(username, group string) (*AssignGroupResult, error) {
	req := map[string]string{"group": group}
	return createResource[AssignGroupResult](c, fmt.Sprintf("/v1/peers/%s/group", username), req)
}

func createResource[T any](c *Client, path string, body any) (*T, error) {
	var result T
	if err := c.post(path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
