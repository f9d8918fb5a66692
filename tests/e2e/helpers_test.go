//go:build e2e
// +build e2e

package e2e

import (
	"encoding/json"
	"net/http"
)

// jsonDecode drains and decodes a response body.
func jsonDecode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
