package models

// Role is the author of a conversation entry
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// WebSource is a citation returned alongside a grounded answer. URI is its
// identity key.
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Message is one entry of a conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsModel reports whether the message was authored by the model
func (m Message) IsModel() bool {
	return m.Role == RoleModel
}

// Fragment is one incremental piece of a streamed reply
type Fragment struct {
	Text string
}
