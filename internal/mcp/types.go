package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	DimmingActive bool    `json:"dimming_active"`
	OverlayCount  int     `json:"overlay_count"`
	Intensity     float64 `json:"intensity"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// ToggleInput is the input for the toggle_dimming tool.
type ToggleInput struct{}

// ToggleOutput is the output for the toggle_dimming tool.
type ToggleOutput struct {
	DimmingActive bool `json:"dimming_active"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// DisplayEntry describes one connected display.
type DisplayEntry struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayEntry `json:"displays"`
}

// SetExclusionInput is the input for the set_exclusion tool.
type SetExclusionInput struct {
	Identifier string `json:"identifier" jsonschema:"required,Application identifier (WM_CLASS) to exclude or re-include"`
	Excluded   bool   `json:"excluded" jsonschema:"required,true to exclude the application from focus treatment; false to remove the exclusion"`
}

// SetExclusionOutput is the output for the set_exclusion tool.
type SetExclusionOutput struct {
	Identifier string   `json:"identifier"`
	Excluded   bool     `json:"excluded"`
	All        []string `json:"all"`
}

// ListExclusionsInput is the input for the list_exclusions tool.
type ListExclusionsInput struct{}

// ListExclusionsOutput is the output for the list_exclusions tool.
type ListExclusionsOutput struct {
	Identifiers []string `json:"identifiers"`
}
