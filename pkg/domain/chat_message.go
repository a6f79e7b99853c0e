package domain

// ChatMessage is one inbound text message. It lives only for the
// duration of handling a single update and is never stored.
type ChatMessage struct {
	ChatID int64
	UserID int64
	Text   string
}
