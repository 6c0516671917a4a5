// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Services return *Error for anything a client should see; every other
// error is treated as Internal and its details are only logged.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	HTTPNotFound
	HTTPMethodNotAllowed
	ServiceUnavailable
	BadRequest
	NotFound
	AdminAccessTokenMissing
	AdminAccessTokenInvalid
	AdminAccessTokenNotEffective
	AdminAccessTokenExpired
	PermissionDenied
	DataTooLarge
	ArticleLocked
	TooManyRequests
)

type kindInfo struct {
	status  int
	code    string
	message string
}

var kinds = map[Kind]kindInfo{
	Internal:                     {http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	HTTPNotFound:                 {http.StatusNotFound, "HTTP_NOT_FOUND", "Route not found"},
	HTTPMethodNotAllowed:         {http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"},
	ServiceUnavailable:           {http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service unavailable"},
	BadRequest:                   {http.StatusBadRequest, "BAD_REQUEST", "Bad request"},
	NotFound:                     {http.StatusNotFound, "NOT_FOUND", "Not found"},
	AdminAccessTokenMissing:      {http.StatusUnauthorized, "ADMIN_ACCESS_TOKEN_MISSING", "Admin access token missing"},
	AdminAccessTokenInvalid:      {http.StatusUnauthorized, "ADMIN_ACCESS_TOKEN_INVALID", "Admin access token invalid"},
	AdminAccessTokenNotEffective: {http.StatusUnauthorized, "ADMIN_ACCESS_TOKEN_NOT_EFFECTIVE", "Admin access token not yet effective"},
	AdminAccessTokenExpired:      {http.StatusUnauthorized, "ADMIN_ACCESS_TOKEN_EXPIRED", "Admin access token expired"},
	PermissionDenied:             {http.StatusForbidden, "PERMISSION_DENIED", "Permission denied"},
	DataTooLarge:                 {http.StatusRequestEntityTooLarge, "DATA_TOO_LARGE", "Data too large"},
	ArticleLocked:                {http.StatusUnauthorized, "ARTICLE_ACCESS_TOKEN_MISSING", "Article is password protected"},
	TooManyRequests:              {http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests"},
}

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	return kinds[k].status
}

// Code returns the stable wire code for the kind.
func (k Kind) Code() string {
	return kinds[k].code
}

func (k Kind) String() string {
	return k.Code()
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string

	// ArticleID is set for ArticleLocked.
	ArticleID string

	// Limit is set for DataTooLarge.
	Limit int64

	// Field names the offending request field of a BadRequest, if known.
	Field string

	cause error
}

// New returns an error of the given kind with a client-facing message.
// An empty message falls back to the kind's default.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap classifies err under kind while keeping it reachable via errors.Unwrap.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// Locked returns the error a visitor gets when reading a protected article
// without a permit.
func Locked(articleID string) *Error {
	return &Error{Kind: ArticleLocked, ArticleID: articleID}
}

// TooLarge returns a DataTooLarge error carrying the applicable limit.
func TooLarge(limit int64) *Error {
	return &Error{Kind: DataTooLarge, Limit: limit, Message: fmt.Sprintf("Data exceeds the %d byte limit", limit)}
}

func (e *Error) Error() string {
	msg := e.PublicMessage()
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error of the same kind, so errors.Is(err, apperr.New(apperr.NotFound, ""))
// works as a kind check.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// PublicMessage returns the message safe to send to clients.
func (e *Error) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return kinds[e.Kind].message
}

// Details returns structured fields for the response body, or nil.
func (e *Error) Details() map[string]any {
	switch e.Kind {
	case ArticleLocked:
		return map[string]any{"article_id": e.ArticleID}
	case DataTooLarge:
		return map[string]any{"limit": e.Limit}
	default:
		if e.Field != "" {
			return map[string]any{"field": e.Field}
		}
		return nil
	}
}

// From classifies any error. Unclassified errors become Internal with the
// generic message; the original error stays attached as the cause.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: Internal, cause: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
