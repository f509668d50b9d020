package store

import (
	"encoding/json"
	"fmt"

	"github.com/emrgen/lineage/internal/compress"
	"github.com/emrgen/lineage/internal/model"
)

func encode(c compress.Compress, obj model.Object) ([]byte, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", obj.Kind(), obj.GetHandle(), err)
	}

	return c.Encode(raw)
}

// decode reads a payload written with the named codec, which need not be the
// codec the store currently writes with.
func decode(kind model.Kind, data []byte, codec string) (model.Object, error) {
	c, err := compress.New(codec)
	if err != nil {
		return nil, err
	}
	raw, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	obj, err := model.New(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	return obj, nil
}
