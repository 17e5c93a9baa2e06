// Package response writes the JSON envelope used by every endpoint:
//
//	{"success": true,  "message": "...", "data": {...}}
//	{"success": false, "message": "..."}
//
// HandleError is the single place where errors become HTTP responses.
// Controllers and services return errors; nothing else picks status codes.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/S-KABILAN/ECOMMERCE/config"
	"github.com/S-KABILAN/ECOMMERCE/pkg/apperror"
	"github.com/S-KABILAN/ECOMMERCE/pkg/logger"
)

// Envelope is the JSON body shape of every response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Stack   string      `json:"stack,omitempty"`
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON writes an arbitrary envelope with the given status.
func JSON(w http.ResponseWriter, status int, body Envelope) {
	write(w, status, body)
}

// Success sends a 200 with an optional message and data payload.
func Success(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 with an optional message and data payload.
func Created(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Error sends a failure envelope with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: false, Message: message})
}

// HandleError maps err to a status code and writes the failure envelope.
// Driver and library errors that slipped through without classification are
// normalized here, so callers may pass raw errors.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)

	status := e.Status()
	body := Envelope{Success: false, Message: e.Error()}
	if len(e.Fields) > 0 {
		body.Errors = e.Fields
	}

	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		if config.Debug() {
			body.Stack = string(debug.Stack())
		} else {
			body.Message = "Internal Server Error"
		}
	}

	write(w, status, body)
}

// classify normalizes any error into an *apperror.Error.
func classify(err error) *apperror.Error {
	if e, ok := apperror.As(err); ok {
		return e
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.NewNotFound("Resource not found")
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperror.NewDuplicate("Duplicate field value entered")
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperror.NewToken("JSON Web Token has expired. Try again")
	}
	if errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrSignatureInvalid) || errors.Is(err, jwt.ErrTokenNotValidYet) {
		return apperror.NewToken("JSON Web Token is invalid. Try again")
	}
	return apperror.Wrap(err)
}
