// Package json provides the JSON codec shared by the store and the API.
package json

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MustMarshal marshals v and panics upon error.
func MustMarshal(v any) []byte {
	b, err := api.Marshal(v)
	if err != nil {
		panic(err.Error())
	}
	return b
}

func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

func NewEncoder(w io.Writer) *jsoniter.Encoder {
	return api.NewEncoder(w)
}

func NewDecoder(r io.Reader) *jsoniter.Decoder {
	return api.NewDecoder(r)
}
