/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"encoding/json"
)

// Encoder encodes a payload into the request body.
type Encoder interface {
	Encode(payload interface{}) ([]byte, error)
	ContentType() string
}

// JSONEncoder encodes payloads as JSON.
type JSONEncoder struct{}

// Encode encodes payload as JSON.
func (JSONEncoder) Encode(payload interface{}) ([]byte, error) {
	return json.Marshal(payload)
}

// ContentType returns "application/json".
func (JSONEncoder) ContentType() string {
	return "application/json"
}
