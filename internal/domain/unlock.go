package domain

// UnlockResult reports the outcome of passing the unlock gate.
type UnlockResult struct {
	Balance int  `json:"balance"`
	Charged bool `json:"charged"`
}
