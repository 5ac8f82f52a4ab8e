package models

import "errors"

var (
	ErrNoRecord            = errors.New("models: no matching record found")
	ErrMissingParameters   = errors.New("models: missing required parameters")
	ErrTransactionNotFound = errors.New("models: transaction not found")
	ErrUserNotFound        = errors.New("models: user not found")
	ErrMissingFCMToken     = errors.New("models: user has no fcm token")
)
