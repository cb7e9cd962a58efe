package models

// ValidateRequest asks for an ad-presence check over a keyword list.
type ValidateRequest struct {
	Keywords []string `json:"keywords" binding:"required,min=1,dive,min=1"`
}

// ValidateResponse carries per-keyword ad-presence results.
type ValidateResponse struct {
	Success bool         `json:"success"`
	Results []AdPresence `json:"results,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// MineResponse carries the stage counts and insert totals of a mining run.
type MineResponse struct {
	Success bool         `json:"success"`
	Stats   *MineStats   `json:"stats,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// LoginStatusResponse reports whether the persisted session still
// authenticates.
type LoginStatusResponse struct {
	Success  bool         `json:"success"`
	LoggedIn bool         `json:"logged_in"`
	Signal   string       `json:"signal,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Busy    bool   `json:"busy"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
