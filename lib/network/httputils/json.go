package httputils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/nvellon/hal"

	"boscoin.io/benor/lib/common"
)

type HALResource interface {
	Resource() *hal.Resource
}

// WriteJSON writes the value v to the http response as json encoding
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	switch t := v.(type) {
	case HALResource:
		w.Header().Set("Content-Type", common.ContentTypeHALJSON)
		v = t.Resource()
	case Problem:
		w.Header().Set("Content-Type", common.ContentTypeProblemJSON)
	case error:
		w.Header().Set("Content-Type", common.ContentTypeProblemJSON)
		v = NewErrorProblem(t, code)
	default:
		w.Header().Set("Content-Type", common.ContentTypeJSON)
	}

	w.WriteHeader(code)

	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if _, err := w.Write(bs); err != nil {
		return err
	}

	return nil
}

// WriteJSONError writes the problem of err with the status mapped from its
// code.
func WriteJSONError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusCode(err), err)
}

func WriteText(w http.ResponseWriter, code int, s string) error {
	w.Header().Set("Content-Type", common.ContentTypeText)
	w.WriteHeader(code)

	_, err := io.WriteString(w, s)
	return err
}
