package server

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gorilla/schema"
)

// ChangeRequest is one dropdown or radio change.
type ChangeRequest struct {
	Dimension string `json:"dimension" schema:"dimension"`
	Value     string `json:"value" schema:"value"`
}

type SelectRequest struct {
	Index int `json:"index" schema:"index"`
}

type ExportRequest struct {
	Url string `json:"url" schema:"url"`
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// decodeRequest reads a json body, or form and query values for everything
// else.
func decodeRequest(r *http.Request, out any) error {
	if r.Method != http.MethodGet && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return sonic.ConfigDefault.NewDecoder(r.Body).Decode(out)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	return decoder.Decode(out, r.Form)
}

func wantsJson(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
