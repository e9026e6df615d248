package user

type MeResponse struct {
	ID     string         `json:"id"`
	Claims map[string]any `json:"claims"`
}
