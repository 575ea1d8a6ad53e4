package serializers

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"bbo-tracker/src/interfaces"
)

// -----------------------------------------------------------------------------

// BinSerializer implements interfaces.ISerializer using gob encoding, for
// consumers that prefer a compact binary payload over JSON.
type BinSerializer struct{}

// -----------------------------------------------------------------------------

// NewBinSerializer creates a new instance of the gob serializer.
func NewBinSerializer() interfaces.ISerializer {
	return &BinSerializer{}
}

// -----------------------------------------------------------------------------

func (g *BinSerializer) Marshal(obj interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(obj); err != nil {
		return nil, fmt.Errorf("gob marshal error: %w", err)
	}

	return buf.Bytes(), nil
}

// -----------------------------------------------------------------------------

// Unmarshal converts a gob byte array back into the target object.
func (g *BinSerializer) Unmarshal(data []byte, obj interface{}) error {
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)

	// Decode the data into the target object
	if err := dec.Decode(obj); err != nil {
		return fmt.Errorf("gob unmarshal error: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// New returns the serializer for a configured format name. An empty name
// selects JSON.
func New(format string) (interfaces.ISerializer, error) {
	switch format {
	case "", "json":
		return NewJSONSerializer(), nil
	case "binary":
		return NewBinSerializer(), nil
	default:
		return nil, fmt.Errorf("unknown serialization format: %s", format)
	}
}
