package client

// API endpoint paths.
const (
	endpointRegister = "/api/v1/auth/register"
	endpointLogin    = "/api/v1/auth/login"
	endpointChats    = "/api/v1/chats"
	endpointHistory  = "/api/v1/chats/%s/messages"
	endpointChatSend = "/api/v1/chats/%s/send"
)
