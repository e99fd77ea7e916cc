package websocket

// Message defines the structure for presence events sent to clients.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}
