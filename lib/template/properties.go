package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// listValueWidth is the maximum number of runes of a value printed by Properties.List
const listValueWidth = 40

var (
	// ErrInvalidPropertyName is returned by Store for names the KEY=VALUE format cannot hold
	ErrInvalidPropertyName = errors.New("invalid property name")
	// ErrUnstorableProperty is returned by Store for values no KEY=VALUE form reads back unchanged
	ErrUnstorableProperty = errors.New("property value cannot be stored")
)

// Properties is a string to string hash stored under one key, backed by a set of local defaults.
// Lookups that miss the hash fall back to the defaults, writes only go to the hash.
type Properties[K any] struct {
	key      K
	hash     IHashOperations[K, string, string]
	defaults map[string]string
}

// NewProperties binds the hash stored at key. defaults is copied and may be nil.
func NewProperties[K any, V any](t *Template[K, V, string, string], key K, defaults map[string]string) *Properties[K] {
	return &Properties[K]{
		key:      key,
		hash:     t.OpsForHash(),
		defaults: maps.Clone(defaults),
	}
}

// Key returns the key of the backing hash
func (p *Properties[K]) Key() K {
	return p.key
}

// GetProperty returns the value of name, looking at the defaults if the hash has no such field
func (p *Properties[K]) GetProperty(ctx context.Context, name string) (string, bool, error) {
	value, ok, err := p.hash.Get(ctx, p.key, name)
	if err != nil || ok {
		return value, ok, err
	}
	value, ok = p.defaults[name]
	return value, ok, nil
}

// GetPropertyDefault is GetProperty returning def if name is found nowhere
func (p *Properties[K]) GetPropertyDefault(ctx context.Context, name, def string) (string, error) {
	value, ok, err := p.GetProperty(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return value, nil
}

func (p *Properties[K]) SetProperty(ctx context.Context, name, value string) error {
	return p.hash.Put(ctx, p.key, name, value)
}

// PropertyNames returns the fields of the hash followed by the names of defaults not set in the hash
func (p *Properties[K]) PropertyNames(ctx context.Context) ([]string, error) {
	names, err := p.hash.Keys(ctx, p.key)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	for _, n := range slices.Sorted(maps.Keys(p.defaults)) {
		if _, ok := seen[n]; !ok {
			names = append(names, n)
		}
	}
	return names, nil
}

// StringPropertyNames returns the sorted names of all properties, including defaults
func (p *Properties[K]) StringPropertyNames(ctx context.Context) ([]string, error) {
	names, err := p.PropertyNames(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// Size returns the number of fields in the hash. Defaults are not counted.
func (p *Properties[K]) Size(ctx context.Context) (int64, error) {
	return p.hash.Size(ctx, p.key)
}

// Load reads KEY=VALUE lines from r and stores them in the hash
func (p *Properties[K]) Load(ctx context.Context, r io.Reader) error {
	entries, err := godotenv.Parse(r)
	if err != nil {
		return fmt.Errorf("could not parse properties: %w", err)
	}
	return p.putAll(ctx, entries)
}

// Store writes the fields of the hash to w in a format Load reads back unchanged.
// Each line of a non empty comment is written first as a # line.
// Values are written double quoted. A value the quoted form cannot carry exactly falls back
// to single quotes or no quotes, and if no form reads back unchanged Store fails.
func (p *Properties[K]) Store(ctx context.Context, w io.Writer, comment string) error {
	entries, err := p.hash.Entries(ctx, p.key)
	if err != nil {
		return err
	}
	var sb strings.Builder
	if comment != "" {
		for _, line := range strings.Split(comment, "\n") {
			sb.WriteString("# " + line + "\n")
		}
	}
	for _, e := range entries {
		line, err := propertyLine(e.Key, e.Value)
		if err != nil {
			return err
		}
		sb.WriteString(line + "\n")
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

// List prints all properties including defaults to w, truncating long values
func (p *Properties[K]) List(ctx context.Context, w io.Writer) error {
	names, err := p.StringPropertyNames(ctx)
	if err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("-- listing properties --\n")
	for _, name := range names {
		value, _, err := p.GetProperty(ctx, name)
		if err != nil {
			return err
		}
		if runes := []rune(value); len(runes) > listValueWidth {
			value = string(runes[:listValueWidth-3]) + "..."
		}
		sb.WriteString(name + "=" + value + "\n")
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

func (p *Properties[K]) putAll(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	return p.hash.PutAll(ctx, p.key, entries)
}

// --------------------------------------------------------------------------
// Line Format
// --------------------------------------------------------------------------

var doubleQuoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
)

// propertyLine formats one KEY=VALUE line and checks that godotenv reads it back as written
func propertyLine(name, value string) (string, error) {
	if !validPropertyName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPropertyName, name)
	}
	candidates := []string{
		name + `="` + doubleQuoteEscaper.Replace(value) + `"`,
		name + "='" + value + "'",
		name + "=" + value,
	}
	for _, line := range candidates {
		parsed, err := godotenv.Unmarshal(line)
		if err != nil {
			continue
		}
		if v, ok := parsed[name]; ok && len(parsed) == 1 && v == value {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnstorableProperty, name)
}

// validPropertyName reports whether name matches [A-Za-z0-9_.]+, the names godotenv reads reliably
func validPropertyName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
