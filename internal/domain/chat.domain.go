package domain

import "time"

type ChatMessage struct {
	ID        string     `json:"id"`
	FromUser  string     `json:"from_user"`
	ToUser    string     `json:"to_user"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

type SendMessageRequest struct {
	ToUser string `json:"to_user"`
	Body   string `json:"body"`
}
