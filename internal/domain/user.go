package domain

import "time"

// User is the server-side account row. PassHash never leaves the service.
type User struct {
	Id          UserId
	Email       Email
	PassHash    string
	DisplayName string
	AvatarURL   string
	Bio         string
	CreatedAt   time.Time
}

// Principal strips the credential material for client-facing payloads.
func (u User) AsPrincipal() Principal {
	return Principal{
		Id:          u.Id,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Bio:         u.Bio,
		CreatedAt:   u.CreatedAt,
	}
}

// ResetCode is a pending password-recovery confirmation.
type ResetCode struct {
	Email    Email
	CodeHash string
	Expires  time.Time
}
