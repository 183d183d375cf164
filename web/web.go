// Package web contains data types for the `caplink:http_server` and
// `caplink:httpclient` capabilities.
package web

import "encoding/json"

const (
	// Invoked on a provider to perform an outbound HTTP request
	OpPerformRequest = "PerformRequest"
	// Invoked on an actor in response to an inbound HTTP request
	OpHandleRequest = "HandleRequest"
)

// Request describes an HTTP request. Leading slashes of the path may not be
// trimmed.
type Request struct {
	Method      string            `cbor:"method"`
	Path        string            `cbor:"path"`
	QueryString string            `cbor:"queryString"`
	Header      map[string]string `cbor:"header,omitempty"`
	Body        []byte            `cbor:"body,omitempty"`
}

// Response represents an HTTP response.
type Response struct {
	StatusCode uint32            `cbor:"statusCode"`
	Status     string            `cbor:"status"`
	Header     map[string]string `cbor:"header,omitempty"`
	Body       []byte            `cbor:"body,omitempty"`
}

// OK creates an empty 200 response.
func OK() Response {
	return Response{StatusCode: 200, Status: "OK"}
}

// NotFound creates an empty 404 response.
func NotFound() Response {
	return Response{StatusCode: 404, Status: "Not Found"}
}

// BadRequest creates an empty 400 response.
func BadRequest() Response {
	return Response{StatusCode: 400, Status: "Bad Request"}
}

// InternalServerError creates a 500 response carrying msg as its body.
func InternalServerError(msg string) Response {
	return Response{StatusCode: 500, Status: "Internal Server Error", Body: []byte(msg)}
}

// JSON creates a response with the given status serializing payload as a JSON
// body.
func JSON(payload any, statusCode uint32, status string) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}
	return Response{StatusCode: statusCode, Status: status, Body: body}, nil
}
