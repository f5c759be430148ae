package serializer

import (
	"github.com/hashicorp/go-msgpack/v2/codec"
)

// msgpackHandle is shared by all msgpack serializers. Handles are safe for concurrent use
// once configured.
var msgpackHandle = &codec.MsgpackHandle{
	WriteExt: true,
}

// NewMsgpackSerializer creates a new serializer using the MessagePack format
func NewMsgpackSerializer[T any]() IRedisSerializer[T] {
	return &msgpackSerializerImpl[T]{}
}

// msgpackSerializerImpl implements the IRedisSerializer interface using msgpack encoding
type msgpackSerializerImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRedisSerializer)
// --------------------------------------------------------------------------

func (m msgpackSerializerImpl[T]) Serialize(value T) ([]byte, error) {
	if IsNil(value) {
		return EmptyArray, nil
	}
	var b []byte
	if err := codec.NewEncoderBytes(&b, msgpackHandle).Encode(value); err != nil {
		return nil, writeError("MSGPACK", err)
	}
	return b, nil
}

func (m msgpackSerializerImpl[T]) Deserialize(data []byte) (T, error) {
	var value T
	if IsEmpty(data) {
		return value, nil
	}
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(&value); err != nil {
		var zero T
		return zero, readError("MSGPACK", err)
	}
	return value, nil
}
