package resolver

import (
	"net/http"
)

// Candidate is one guess at the route and verb implementing a logical
// operation. URL is either absolute or a path relative to the backend base
// URL. A nil Body sends no request body.
type Candidate struct {
	Method string
	URL    string
	Body   interface{}
}

func Get(url string) Candidate {
	return Candidate{Method: http.MethodGet, URL: url}
}

func Post(url string, body interface{}) Candidate {
	return Candidate{Method: http.MethodPost, URL: url, Body: body}
}

func Patch(url string, body interface{}) Candidate {
	return Candidate{Method: http.MethodPatch, URL: url, Body: body}
}

func Delete(url string) Candidate {
	return Candidate{Method: http.MethodDelete, URL: url}
}

func (c Candidate) String() string {
	return c.Method + " " + c.URL
}

// Response is the successful outcome of a candidate.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	Candidate Candidate
}
