package serializer

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var errUnexpectedMessageType = errors.New("unexpected message type")

// NewProtoSerializer creates a new serializer using the protobuf wire format.
// T is the pointer type of a generated message, e.g. *wrapperspb.StringValue.
//
// A message with all fields unset encodes to an empty payload and therefore reads back as nil.
func NewProtoSerializer[T proto.Message]() IRedisSerializer[T] {
	return &protoSerializerImpl[T]{}
}

// protoSerializerImpl implements the IRedisSerializer interface using protobuf encoding
type protoSerializerImpl[T proto.Message] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRedisSerializer)
// --------------------------------------------------------------------------

func (p protoSerializerImpl[T]) Serialize(value T) ([]byte, error) {
	if IsNil(value) {
		return EmptyArray, nil
	}
	b, err := proto.Marshal(value)
	if err != nil {
		return nil, writeError("PROTO", err)
	}
	if b == nil {
		return EmptyArray, nil
	}
	return b, nil
}

func (p protoSerializerImpl[T]) Deserialize(data []byte) (T, error) {
	var zero T
	if IsEmpty(data) {
		return zero, nil
	}
	// generated messages answer ProtoReflect on a nil receiver
	msg, ok := zero.ProtoReflect().New().Interface().(T)
	if !ok {
		return zero, readError("PROTO", errUnexpectedMessageType)
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return zero, readError("PROTO", err)
	}
	return msg, nil
}
