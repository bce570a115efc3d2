package kits

import "errors"

var (
	ErrKitNotFound    = errors.New("kit not found")
	ErrStepNotFound   = errors.New("step not found")
	ErrClientNotFound = errors.New("client not found")
	ErrSlugTaken      = errors.New("a kit with this slug already exists")
	ErrNotPublished   = errors.New("kit is not published")
)
