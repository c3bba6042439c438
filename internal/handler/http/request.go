package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// decodeOptionalJSON decodes the body into v and treats an empty body as an
// empty object.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// queryInt returns the integer query parameter or 0 when it is absent or
// not a number; validation reports the zero value.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
