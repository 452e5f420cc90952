package websocket

// Message defines the structure for feed messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}
