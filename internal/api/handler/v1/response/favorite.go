package response

// FavoriteToggleResponse reports what the toggle did: "added" or "removed".
type FavoriteToggleResponse struct {
	Action string `json:"action"`
}
