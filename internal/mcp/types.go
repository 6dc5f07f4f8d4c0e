package mcp

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// MonitorInfo is one monitor a layout remembers.
type MonitorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Geometry string `json:"geometry"`
}

// LayoutInfo describes a single stored layout.
type LayoutInfo struct {
	Layout   uint64        `json:"layout"`
	Level    string        `json:"level"`
	BoundTo  string        `json:"bound_to,omitempty"`
	Monitors []MonitorInfo `json:"monitors"`
	Icons    int           `json:"icons"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Path    string       `json:"path"`
	Layouts []LayoutInfo `json:"layouts"`
}

// GetIconInput is the input for the get_icon tool.
type GetIconInput struct {
	Icon   string  `json:"icon" jsonschema:"required,Icon id, usually the desktop file URI"`
	Layout *uint64 `json:"layout,omitempty" jsonschema:"Read the icon from this layout instead of resolving it across monitors"`
}

// GetIconOutput is the output for the get_icon tool.
type GetIconOutput struct {
	Found    bool   `json:"found"`
	Layout   uint64 `json:"layout,omitempty"`
	Monitor  string `json:"monitor,omitempty"`
	Row      uint   `json:"row"`
	Col      uint   `json:"col"`
	LastSeen uint64 `json:"last_seen,omitempty"`
}

// SetIconPositionInput is the input for the set_icon_position tool.
type SetIconPositionInput struct {
	Layout   uint64 `json:"layout" jsonschema:"required,Layout id from list_layouts"`
	Icon     string `json:"icon" jsonschema:"required,Icon id"`
	Row      uint   `json:"row" jsonschema:"Grid row"`
	Col      uint   `json:"col" jsonschema:"Grid column"`
	LastSeen uint64 `json:"last_seen,omitempty" jsonschema:"Unix time a removable volume icon was last seen (default: 0)"`
}

// IconOutput is the output of tools that change one icon.
type IconOutput struct {
	Layout uint64 `json:"layout"`
	Icon   string `json:"icon"`
}

// RemoveIconInput is the input for the remove_icon tool.
type RemoveIconInput struct {
	Layout uint64 `json:"layout" jsonschema:"required,Layout id from list_layouts"`
	Icon   string `json:"icon" jsonschema:"required,Icon id"`
}

// DeleteLayoutInput is the input for the delete_layout tool.
type DeleteLayoutInput struct {
	Layout uint64 `json:"layout" jsonschema:"required,Layout id from list_layouts"`
}

// DeleteLayoutOutput is the output for the delete_layout tool.
type DeleteLayoutOutput struct {
	Layout  uint64 `json:"layout"`
	Deleted bool   `json:"deleted"`
}

// SaveInput is the input for the save tool.
type SaveInput struct{}

// SaveOutput is the output for the save tool.
type SaveOutput struct {
	Path    string `json:"path"`
	Layouts int    `json:"layouts"`
}
