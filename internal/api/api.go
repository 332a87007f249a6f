// Package api holds the JSON response helpers shared by every handler
// package: a success encoder and the error envelope with its machine-readable
// kind alongside the human-readable message.
package api

import (
	"encoding/json"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindConflict        ErrorKind = "conflict"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindForbidden       ErrorKind = "forbidden"
	KindUpstream        ErrorKind = "upstream_unavailable"
	KindInternal        ErrorKind = "internal"
)

type errorBody struct {
	Error struct {
		Kind    ErrorKind `json:"kind"`
		Message string    `json:"message"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, kind ErrorKind, msg string) {
	var body errorBody
	body.Error.Kind = kind
	body.Error.Message = msg
	WriteJSON(w, status, body)
}
