package model

import "time"

// Trainer is a user allowed to operate the API.
type Trainer struct {
	ID           int       `json:"id"`
	Username     string    `json:"usuario"`
	Name         string    `json:"nome"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for trainer authentication.
type LoginRequest struct {
	Username string `json:"usuario" binding:"required,min=3,max=50"`
	Password string `json:"senha" binding:"required,min=4,max=128"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token   string  `json:"token"`
	Trainer Trainer `json:"trainer"`
}
