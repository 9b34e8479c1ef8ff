package domain

// Mail is an outbound notification composed from a named template and a data map.
type Mail struct {
	To       string         `json:"to"`
	ToName   string         `json:"to_name"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}
