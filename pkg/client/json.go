package client

import (
	jsoniter "github.com/json-iterator/go"
)

// json is a drop-in replacement of the encoding/json, it is used for request bodies and responses.
// Struct tags, json.Marshaler and json.Unmarshaler implementations work the same way.
var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals
