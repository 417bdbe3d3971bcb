package types

// APIResponse is the server's uniform envelope.
type APIResponse[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// User is the server's user representation.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	LastLoginAt string `json:"last_login_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// LoginData is the payload of a successful login.
type LoginData struct {
	Token  string `json:"token"`
	Expire string `json:"expire"`
	User   User   `json:"user"`
}

// Chat is the server's chat representation.
type Chat struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ChatListData is the payload of the chat list endpoint.
type ChatListData struct {
	Chats []Chat `json:"chats"`
	Total int    `json:"total"`
}

// Message is the server's stored message representation.
type Message struct {
	ID        string `json:"id"`
	ChatID    string `json:"chat_id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// MessageListData is the payload of the history endpoint.
type MessageListData struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

// Frame is one websocket message from the server.
type Frame struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     bool   `json:"error,omitempty"`
}
