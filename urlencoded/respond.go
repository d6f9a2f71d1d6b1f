package urlencoded

import (
	"net/http"

	"github.com/tomasbasham/enumform"
)

// Respond writes v as an application/x-www-form-urlencoded body with the given
// status. If v cannot be encoded, nothing but a 500 status is written and the
// encoding error is returned.
func Respond[T any](rw http.ResponseWriter, status int, s enumform.Serializer[T], v T) error {
	body, err := s.Marshal(v)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)

		return err
	}

	rw.Header().Set("Content-Type", formMediaType.String())
	rw.WriteHeader(status)
	_, err = rw.Write(body)

	return err
}

// Query renders v for use as the query component of a URI.
func Query[T any](s enumform.Serializer[T], v T) (string, error) {
	body, err := s.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
