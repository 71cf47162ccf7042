package apiclient

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/s0up4200/restkit/model"
)

// Response is a successful response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Method     string
	URL        string
	// Attempts is the number of attempts the request needed
	Attempts int
	// Elapsed covers the final attempt only
	Elapsed time.Duration
}

// JSON unmarshals the body without the validation contract
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Decode decodes the body into target under the validation contract of
// package model.
func (r *Response) Decode(target any) error {
	return model.DecodeInto(r.Body, target)
}

// Decode decodes the body of resp into a new T under the validation
// contract of package model.
func Decode[T any](resp *Response) (T, error) {
	return model.Decode[T](resp.Body)
}
