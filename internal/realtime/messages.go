package realtime

// MessageType names a channel message.
type MessageType string

const (
	TypeRegister   MessageType = "register"
	TypeRegistered MessageType = "registered"
	TypeRefresh    MessageType = "refresh"
	TypeError      MessageType = "error"
)

// Message is the JSON frame exchanged on a display channel. AccessToken only
// travels client to server; Message only travels server to client.
type Message struct {
	Type        MessageType `json:"type"`
	DisplayID   string      `json:"displayId,omitempty"`
	AccessToken string      `json:"accessToken,omitempty"`
	Message     string      `json:"message,omitempty"`
}

func refreshMessage(displayID string) Message {
	return Message{Type: TypeRefresh, DisplayID: displayID}
}

func errorMessage(text string) Message {
	return Message{Type: TypeError, Message: text}
}
