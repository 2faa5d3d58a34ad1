package models

import "errors"

// Application-wide standard errors
var (
	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordIncorrect  = errors.New("password is incorrect")
	ErrUnauthorized       = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden          = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Catalog & Purchase Errors
	ErrPackageNotFound     = errors.New("package not found")
	ErrProfileImageMissing = errors.New("no profile image set")

	// External Collaborator Errors
	ErrUploadFailed = errors.New("image upload failed")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
