package team

import "errors"

var (
	ErrMemberNotFound     = errors.New("team member not found")
	ErrEmailTaken         = errors.New("a member with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
)
