package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/queue"
	"github.com/apresai/narrated-demo/internal/timeline"
)

// apiError is the JSON body every non-2xx response carries, per spec.md
// §7's "surface shape, not type names" error kinds.
type apiError struct {
	status      int
	Message     string `json:"message"`
	Code        string `json:"code,omitempty"`
	LineNumber  int    `json:"line_number,omitempty"`
	ActionIndex int    `json:"action_index,omitempty"`
	ActionID    string `json:"action_id,omitempty"`
}

func (e *apiError) Error() string { return e.Message }

func validationError(err *timeline.ValidationError) *apiError {
	return &apiError{
		status:      http.StatusBadRequest,
		Message:     err.Message,
		Code:        err.Code,
		LineNumber:  err.LineNumber,
		ActionIndex: err.ActionIndex,
		ActionID:    err.ActionID,
	}
}

func notFound(message string) *apiError {
	return &apiError{status: http.StatusNotFound, Message: message}
}

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, Message: message}
}

func runtimeError(message string) *apiError {
	return &apiError{status: http.StatusInternalServerError, Message: message}
}

// classifyError maps a generic error returned by a collaborator package
// into the right HTTP status, per spec.md §7: validation errors and
// project-not-found errors carry their own shape; everything else is a
// runtime error (500).
func classifyError(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	var ve *timeline.ValidationError
	if errors.As(err, &ve) {
		return validationError(ve)
	}
	var nf *project.NotFoundError
	if errors.As(err, &nf) {
		return notFound(err.Error())
	}
	var jnf *queue.NotFoundError
	if errors.As(err, &jnf) {
		return notFound(err.Error())
	}
	return runtimeError(err.Error())
}

func writeError(w http.ResponseWriter, err error) {
	ae := classifyError(err)
	writeJSON(w, ae.status, ae)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}
