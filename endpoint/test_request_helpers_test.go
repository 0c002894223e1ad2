package endpoint

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
)

// requestSpec describes one request against a handler mounted at
// registerPath. A string body is sent as is; anything else is JSON encoded.
type requestSpec struct {
	method       string
	registerPath string
	requestPath  string
	handler      gin.HandlerFunc
	body         interface{}
	headers      map[string]string
}

func (s requestSpec) reader() (io.Reader, bool, error) {
	switch v := s.body.(type) {
	case nil:
		return nil, false, nil
	case string:
		return strings.NewReader(v), true, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false, err
		}
		return bytes.NewReader(b), true, nil
	}
}

// performRequest serves spec on r and decodes a JSON envelope when the
// response carries one.
func performRequest(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	body, isJSON, err := spec.reader()
	if err != nil {
		return nil, nil, err
	}
	req := httptest.NewRequest(spec.method, spec.requestPath, body)
	if isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.Len() == 0 || !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		return w, nil, nil
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		return w, nil, err
	}
	return w, response, nil
}

// doRequestWithHandler mounts spec.handler on r and then serves spec.
func doRequestWithHandler(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	r.Handle(spec.method, spec.registerPath, spec.handler)
	return performRequest(r, spec)
}
