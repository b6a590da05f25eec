package session

// Fixed reply texts, without their OK/ERR/INFO prefix.
const (
	textMustLogin     = "You must login first: HELLO <name>"
	textMissingName   = "Missing name. Usage: HELLO <name>"
	textNameTaken     = "Name already taken"
	textChatUsage     = "Usage: CHAT <target>"
	textUserNotFound  = "User not found"
	textSelfChat      = "Cannot chat with yourself"
	textAlreadyInChat = "You are already in a chat. Use END first."
	textMsgUsage      = "Usage: MSG <text>"
	textNoChatForMsg  = "No active chat. Use CHAT <name> first."
	textNoChat        = "No active chat"
	textRateLimited   = "Rate limit exceeded"
	textSent          = "sent"
	textChatEnded     = "Chat ended"
	textBye           = "Bye"
)
