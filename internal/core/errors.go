package core

import "errors"

// Registry errors. Every failed registry operation leaves state untouched.
var (
	ErrInvalidName   = errors.New("invalid name")
	ErrNameTaken     = errors.New("name already taken")
	ErrUserNotFound  = errors.New("user not found")
	ErrSelfChat      = errors.New("cannot chat with yourself")
	ErrAlreadyInChat = errors.New("already in a chat")
	ErrPeerInChat    = errors.New("peer already in a chat")
	ErrNoActiveChat  = errors.New("no active chat")
)
