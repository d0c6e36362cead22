// Package response writes JSON bodies for the HTTP API.
package response

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
)

// Message is the body shape of every acknowledgement and error.
type Message struct {
	Message string `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"message":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the client may already be gone
	w.Write(body)
}

// Text writes {"message": msg}.
func Text(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Message{Message: msg})
}

func Unauthorized(w http.ResponseWriter) {
	Text(w, http.StatusUnauthorized, "Unauthorized")
}

func InternalError(w http.ResponseWriter) {
	Text(w, http.StatusInternalServerError, "Internal Server Error")
}

// Decode reads a JSON request body into v. An empty body leaves v untouched.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return sonic.Unmarshal(body, v)
}
