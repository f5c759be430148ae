package template

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ValentinKolb/kvt/lib/connection/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProperties(defaults map[string]string) *Properties[string] {
	return NewProperties(NewStringTemplate(memory.NewConnectionFactory()), "props", defaults)
}

func TestPropertiesGet(t *testing.T) {
	ctx := context.Background()
	props := newProperties(map[string]string{"a": "x"})

	v, ok, err := props.GetProperty(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok, err = props.GetProperty(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	v, err = props.GetPropertyDefault(ctx, "b", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	require.NoError(t, props.SetProperty(ctx, "a", "y"))
	v, _, err = props.GetProperty(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "y", v)

	size, err := props.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestPropertiesNames(t *testing.T) {
	ctx := context.Background()
	props := newProperties(map[string]string{"d": "o", "foo": "default"})

	require.NoError(t, props.SetProperty(ctx, "foo", "o"))
	require.NoError(t, props.SetProperty(ctx, "x", "o"))

	names, err := props.PropertyNames(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 3)
	assert.ElementsMatch(t, []string{"foo", "x", "d"}, names)

	sorted, err := props.StringPropertyNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "foo", "x"}, sorted)

	empty := newProperties(nil)
	names, err = empty.PropertyNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPropertiesLoadStore(t *testing.T) {
	ctx := context.Background()
	props := newProperties(nil)
	require.NoError(t, props.SetProperty(ctx, "existing", "1"))

	input := "# comment\nfoo=bar\nbucket=head\nlotus=\"island\"\n"
	require.NoError(t, props.Load(ctx, strings.NewReader(input)))

	v, _, err := props.GetProperty(ctx, "lotus")
	require.NoError(t, err)
	assert.Equal(t, "island", v)
	size, err := props.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)

	var buf bytes.Buffer
	require.NoError(t, props.Store(ctx, &buf, "no-comment"))
	assert.True(t, strings.HasPrefix(buf.String(), "# no-comment\n"))

	copied := newProperties(nil)
	require.NoError(t, copied.Load(ctx, &buf))
	for _, name := range []string{"existing", "foo", "bucket", "lotus"} {
		want, _, err := props.GetProperty(ctx, name)
		require.NoError(t, err)
		got, ok, err := copied.GetProperty(ctx, name)
		require.NoError(t, err)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestPropertiesStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	props := newProperties(nil)

	values := map[string]string{
		"zip":        "007",
		"sign":       "+5",
		"empty":      "",
		"spaces":     "  padded  ",
		"quoted":     `say "hi"`,
		"apostrophe": `it's "done"`,
		"path":       `C:\temp\`,
		"vars":       "$HOME and ${USER} and $(pwd)",
		"lines":      "first\nsecond\r\nthird",
		"hash":       "a #b",
		"unicode":    "héllo wörld",
	}
	for name, value := range values {
		require.NoError(t, props.SetProperty(ctx, name, value))
	}

	var buf bytes.Buffer
	require.NoError(t, props.Store(ctx, &buf, "first\nsecond"))
	assert.True(t, strings.HasPrefix(buf.String(), "# first\n# second\n"))
	assert.Contains(t, buf.String(), `zip="007"`)
	assert.Contains(t, buf.String(), `sign="+5"`)

	copied := newProperties(nil)
	require.NoError(t, copied.Load(ctx, &buf))
	size, err := copied.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(values)), size)
	for name, want := range values {
		got, ok, err := copied.GetProperty(ctx, name)
		require.NoError(t, err)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestPropertiesStoreInvalidName(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"my-key", "a b", "ключ", "x=y"} {
		t.Run(name, func(t *testing.T) {
			props := newProperties(nil)
			require.NoError(t, props.SetProperty(ctx, name, "v"))
			var buf bytes.Buffer
			assert.ErrorIs(t, props.Store(ctx, &buf, ""), ErrInvalidPropertyName)
			assert.Empty(t, buf.String())
		})
	}
}

func TestPropertiesXML(t *testing.T) {
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		props := newProperties(nil)
		require.NoError(t, props.SetProperty(ctx, "existing", "1"))

		input := `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<!DOCTYPE properties SYSTEM "http://java.sun.com/dtd/properties.dtd">
<properties>
<comment>test</comment>
<entry key="foo">bar</entry>
<entry key="bucket">head</entry>
<entry key="lotus">island</entry>
</properties>
`
		require.NoError(t, props.LoadXML(ctx, strings.NewReader(input)))

		for name, want := range map[string]string{"foo": "bar", "bucket": "head", "lotus": "island"} {
			got, _, err := props.GetProperty(ctx, name)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
		size, err := props.Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), size)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		props := newProperties(nil)
		values := map[string]string{
			"x":       "y",
			"a":       "b",
			"my-key":  "007",
			"markup":  `<tag attr="v"> & 'more'`,
			"lines":   "first\n\tsecond\r\n",
			"padded":  "  both sides  ",
			"empty":   "",
			"unicode": "héllo",
		}
		for name, value := range values {
			require.NoError(t, props.SetProperty(ctx, name, value))
		}

		var buf bytes.Buffer
		require.NoError(t, props.StoreXML(ctx, &buf, "comment"))
		out := buf.String()
		assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>`+"\n"+
			`<!DOCTYPE properties SYSTEM "http://java.sun.com/dtd/properties.dtd">`+"\n"+"<properties>"))
		assert.Contains(t, out, "<comment>comment</comment>")
		assert.Contains(t, out, `<entry key="x">y</entry>`)

		copied := newProperties(nil)
		require.NoError(t, copied.LoadXML(ctx, &buf))
		size, err := copied.Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(len(values)), size)
		for name, want := range values {
			got, ok, err := copied.GetProperty(ctx, name)
			require.NoError(t, err)
			assert.True(t, ok, name)
			assert.Equal(t, want, got, name)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		props := newProperties(nil)
		err := props.LoadXML(ctx, strings.NewReader(`<properties><entry>v</entry></properties>`))
		assert.ErrorIs(t, err, errEntryWithoutKey)

		err = props.LoadXML(ctx, strings.NewReader(`<settings><entry key="a">v</entry></settings>`))
		assert.Error(t, err)

		require.NoError(t, props.SetProperty(ctx, "nul", "a\x00b"))
		assert.ErrorIs(t, props.StoreXML(ctx, &bytes.Buffer{}, ""), ErrUnstorableProperty)
	})
}

func TestPropertiesList(t *testing.T) {
	ctx := context.Background()
	props := newProperties(map[string]string{"a": "b"})
	require.NoError(t, props.SetProperty(ctx, "x", "y"))
	require.NoError(t, props.SetProperty(ctx, "long", strings.Repeat("v", 50)))
	require.NoError(t, props.SetProperty(ctx, "wide", strings.Repeat("é", 50)))
	require.NoError(t, props.SetProperty(ctx, "fits", strings.Repeat("ö", 40)))

	var buf bytes.Buffer
	require.NoError(t, props.List(ctx, &buf))

	want := "-- listing properties --\n" +
		"a=b\n" +
		"fits=" + strings.Repeat("ö", 40) + "\n" +
		"long=" + strings.Repeat("v", 37) + "...\n" +
		"wide=" + strings.Repeat("é", 37) + "...\n" +
		"x=y\n"
	assert.Equal(t, want, buf.String())
	assert.True(t, utf8.ValidString(buf.String()))
}
