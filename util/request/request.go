package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andig/vinfast/util"
	"github.com/andig/vinfast/util/transport"
)

// Timeout is the default request timeout used by the Helper
var Timeout = 30 * time.Second

// JSONEncoding specifies application/json for request and response
var JSONEncoding = map[string]string{
	"Content-Type": "application/json",
	"Accept":       "application/json",
}

// AcceptJSON accepting application/json
var AcceptJSON = map[string]string{
	"Accept": "application/json",
}

// New builds and executes HTTP request and returns the response
func New(method, uri string, body io.Reader, headers ...map[string]string) (*http.Request, error) {
	req, err := http.NewRequest(method, uri, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	for _, headers := range headers {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	return req, nil
}

// MarshalJSON marshals data and returns reader of the encoded content
func MarshalJSON(data interface{}) io.Reader {
	b, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return bytes.NewReader(b)
}

// StatusError indicates a non-2xx HTTP response
type StatusError struct {
	resp *http.Response
}

// NewStatusError creates a status error from the response
func NewStatusError(resp *http.Response) StatusError {
	return StatusError{resp: resp}
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d (%s)", e.resp.StatusCode, http.StatusText(e.resp.StatusCode))
}

// Response returns the response with the status error
func (e StatusError) Response() *http.Response {
	return e.resp
}

// StatusCode returns the response status code
func (e StatusError) StatusCode() int {
	return e.resp.StatusCode
}

// HasStatus returns true if the response has one of the given status codes
func (e StatusError) HasStatus(codes ...int) bool {
	for _, code := range codes {
		if e.resp.StatusCode == code {
			return true
		}
	}
	return false
}

// Helper provides utility primitives
type Helper struct {
	*http.Client
	log *util.Logger
}

// NewHelper creates http helper for simplified PUT GET logic
func NewHelper(log *util.Logger) *Helper {
	return &Helper{
		Client: &http.Client{
			Timeout:   Timeout,
			Transport: NewTripper(log, transport.Default()),
		},
		log: log,
	}
}

// DoBody executes HTTP request and returns the response body
func (r *Helper) DoBody(req *http.Request) ([]byte, error) {
	resp, err := r.Do(req)
	var body []byte
	if err == nil {
		body, err = ReadBody(resp)
	}
	return body, err
}

// ReadBody reads HTTP response and returns error on response codes other than HTTP 2xx
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return b, NewStatusError(resp)
	}

	return b, nil
}

// DecodeJSON reads HTTP response and decodes JSON body if error is nil
func DecodeJSON(resp *http.Response, res interface{}) error {
	b, err := ReadBody(resp)
	if err == nil {
		err = json.Unmarshal(b, &res)
	}
	return err
}

// GetBody executes HTTP GET request and returns the response body
func (r *Helper) GetBody(url string) ([]byte, error) {
	resp, err := r.Get(url)
	var body []byte
	if err == nil {
		body, err = ReadBody(resp)
	}
	return body, err
}

// DoJSON executes HTTP request and decodes JSON response.
// It returns a StatusError on response codes other than HTTP 2xx.
func (r *Helper) DoJSON(req *http.Request, res interface{}) error {
	resp, err := r.Do(req)
	if err == nil {
		err = DecodeJSON(resp, &res)
	}
	return err
}

// GetJSON executes HTTP GET request and decodes JSON response.
// It returns a StatusError on response codes other than HTTP 2xx.
func (r *Helper) GetJSON(url string, res interface{}) error {
	req, err := New(http.MethodGet, url, nil, AcceptJSON)
	if err == nil {
		err = r.DoJSON(req, res)
	}
	return err
}
