package serializer

import (
	"fmt"
	"sort"
	"strings"
)

// ByName returns the object serializer registered under name (case-insensitive).
// Known names are gob, json, xml, yaml and msgpack.
func ByName[T any](name string) (IRedisSerializer[T], error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gob", "":
		return NewGOBSerializer[T](), nil
	case "json":
		return NewJSONSerializer[T](), nil
	case "xml":
		return NewXMLSerializer[T](), nil
	case "yaml", "yml":
		return NewYAMLSerializer[T](), nil
	case "msgpack":
		return NewMsgpackSerializer[T](), nil
	default:
		return nil, fmt.Errorf("unknown serializer %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
}

// Names returns the names accepted by ByName
func Names() []string {
	names := []string{"gob", "json", "xml", "yaml", "msgpack"}
	sort.Strings(names)
	return names
}
