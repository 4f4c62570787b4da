package viber

// Keyboard is the custom keyboard attached to a message. Field names follow
// the platform's PascalCase JSON convention.
type Keyboard struct {
	Type          string   `json:"Type,omitempty"`
	DefaultHeight bool     `json:"DefaultHeight,omitempty"`
	BgColor       string   `json:"BgColor,omitempty"`
	Buttons       []Button `json:"Buttons"`
}

// Button is a single keyboard button.
type Button struct {
	Columns    int    `json:"Columns,omitempty"`
	Rows       int    `json:"Rows,omitempty"`
	ActionType string `json:"ActionType,omitempty"`
	ActionBody string `json:"ActionBody"`
	Text       string `json:"Text,omitempty"`
	TextSize   string `json:"TextSize,omitempty"`
	BgColor    string `json:"BgColor,omitempty"`
}
