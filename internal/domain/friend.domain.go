package domain

import "time"

type FriendRequestStatus string

const (
	FriendPending  FriendRequestStatus = "pending"
	FriendAccepted FriendRequestStatus = "accepted"
	FriendDeclined FriendRequestStatus = "declined"
)

type FriendRequest struct {
	ID        string              `json:"id"`
	FromUser  string              `json:"from_user"`
	ToUser    string              `json:"to_user"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
