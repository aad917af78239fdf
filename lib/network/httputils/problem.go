package httputils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"boscoin.io/benor/lib/errors"
)

const ProblemTypeErrorPrefix = "https://boscoin.io/benor/error/"

// Problem is the "problem details" document of RFC 7807.
type Problem struct {
	Type     string      `json:"type"`
	Title    string      `json:"title"`
	Status   int         `json:"status,omitempty"`
	Detail   string      `json:"detail,omitempty"`
	Instance string      `json:"instance,omitempty"`
	Code     uint        `json:"code,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

func NewStatusProblem(status int) Problem {
	return Problem{Type: "about:blank", Title: http.StatusText(status), Status: status}
}

func NewDetailedStatusProblem(status int, detail string) Problem {
	p := NewStatusProblem(status)
	p.Detail = detail
	return p
}

// NewErrorProblem keeps the code and data of `*errors.Error`; any other
// error only gives its message as title.
func NewErrorProblem(err error, status int) Problem {
	p := Problem{Type: "about:blank", Title: err.Error(), Status: status}

	if e, ok := err.(*errors.Error); ok {
		p.Type = fmt.Sprintf("%s%d", ProblemTypeErrorPrefix, e.Code)
		p.Title = e.Message
		p.Code = e.Code
		if len(e.Data) > 0 {
			p.Data = e.Data
		}
	}

	return p
}

func (p Problem) SetInstance(instance string) Problem {
	p.Instance = instance
	return p
}

func (p Problem) SetDetail(detail string) Problem {
	p.Detail = detail
	return p
}

func (p Problem) Serialize() ([]byte, error) {
	return json.Marshal(p)
}

func (p Problem) Error() string {
	b, _ := p.Serialize()
	return string(b)
}
