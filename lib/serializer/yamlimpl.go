package serializer

import (
	"gopkg.in/yaml.v3"
)

// NewYAMLSerializer creates a new serializer using yaml encoding
func NewYAMLSerializer[T any]() IRedisSerializer[T] {
	return &yamlSerializerImpl[T]{}
}

// yamlSerializerImpl implements the IRedisSerializer interface using yaml encoding
type yamlSerializerImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRedisSerializer)
// --------------------------------------------------------------------------

func (y yamlSerializerImpl[T]) Serialize(value T) ([]byte, error) {
	if IsNil(value) {
		return EmptyArray, nil
	}
	b, err := yaml.Marshal(value)
	if err != nil {
		return nil, writeError("YAML", err)
	}
	return b, nil
}

func (y yamlSerializerImpl[T]) Deserialize(data []byte) (T, error) {
	var value T
	if IsEmpty(data) {
		return value, nil
	}
	if err := yaml.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, readError("YAML", err)
	}
	return value, nil
}
