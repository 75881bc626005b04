package api

import (
	json "github.com/dustin/gojson"
)

// Codec encodes plain Go messages as JSON. It registers under the name "json", so it
// replaces Connect's protobuf-only JSON codec on both the handler and the client.
type Codec struct{}

func (Codec) Name() string {
	return "json"
}

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
