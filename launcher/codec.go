// file: launcher/codec.go

package launcher

import (
	json "github.com/goccy/go-json"
)

// Codec is the object mapper shared by the bootstrap and the environment. The
// normalizer encodes configurations with it and the canonical loader reads
// them back, so Extension must name a format the loader understands.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Extension() string
}

// JSONCodec is the default Codec.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Extension() string                  { return ".json" }
