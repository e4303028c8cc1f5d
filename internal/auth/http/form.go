package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabkeeper/pkg/authsdk"
	"github.com/aussiebroadwan/tabkeeper/pkg/idx"
)

// parseForm checks the content type and parses an RFC 6749 form body. It
// writes the error response itself and reports whether to carry on.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return false
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return false
	}
	return true
}

// clientCredentials reads client authentication from HTTP Basic or, failing
// that, the client_id and client_secret form fields.
func clientCredentials(r *http.Request) (id, secret string) {
	if id, secret, ok := r.BasicAuth(); ok {
		return id, secret
	}
	return strings.TrimSpace(r.Form.Get("client_id")), r.Form.Get("client_secret")
}

// pathID reads the {id} path segment. Anything that is not a ULID cannot
// name a stored user or client, so it is answered with 404 here.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		authsdk.ErrNotFound.WriteError(w)
		return "", false
	}
	return id.String(), true
}
