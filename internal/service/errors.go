package service

import "errors"

var (
	// ErrSameObject is returned when both handles of a merge are the same.
	ErrSameObject = errors.New("cannot merge an object with itself")
	// ErrRedirectLoop is returned when following merge redirects never reaches a live object.
	ErrRedirectLoop = errors.New("merge redirects do not lead to a live object")
)
