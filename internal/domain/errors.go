package domain

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given id.
	ErrUserNotFound = errors.New("user not found")
	// ErrCourseNotFound indicates the course id is not part of the catalog.
	ErrCourseNotFound = errors.New("course not found")
	// ErrNotLoggedIn is returned when an operation needs a user bound to the session.
	ErrNotLoggedIn = errors.New("login required")
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)
