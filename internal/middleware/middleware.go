// Package middleware holds the HTTP middleware shared across routes.
package middleware

type contextKey string
