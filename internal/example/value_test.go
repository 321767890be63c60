package example

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_KeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	o := NewObject().Set("z", Leaf("1")).Set("a", Leaf("2")).Set("m", Leaf("3"))
	o.Set("z", Leaf("replaced"))

	require.Equal(t, 3, o.Len())
	keys := make([]string, 0, o.Len())
	for _, f := range o.Fields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)

	v, ok := o.Get("z")
	require.True(t, ok)
	assert.Equal(t, Leaf("replaced"), v)
	_, ok = o.Get("nope")
	assert.False(t, ok)
}

func TestObject_MarshalJSON(t *testing.T) {
	t.Parallel()
	o := NewObject().
		Set("b", Array{Leaf("{{STRING}}")}).
		Set("a", Null{}).
		Set("c", NewObject().Set("x<y", Leaf("Optional<T>")))
	out, err := json.Marshal(o)
	require.NoError(t, err)
	// encoding/json escapes the nested output itself; keys stay in order
	assert.JSONEq(t, `{"b":["{{STRING}}"],"a":null,"c":{"x<y":"Optional<T>"}}`, string(out))
}

func TestMarshal_Layout(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   Value
		want string
	}{
		{"leaf", Leaf("{{ Optional<STRING> }}"), `"{{ Optional<STRING> }}"`},
		{"null", Null{}, "null"},
		{"nil", nil, "null"},
		{"empty array", Array{}, "[ ]"},
		{"empty object", NewObject(), "{ }"},
		{"nil object", (*Object)(nil), "null"},
		{"array", Array{Leaf("a"), Leaf("b")}, `[ "a", "b" ]`},
		{"array of objects", Array{NewObject().Set("k", Leaf("v"))}, "[ {\n  \"k\" : \"v\"\n} ]"},
		{"escapes", Leaf("say \"hi\"\n"), `"say \"hi\"\n"`},
		{"nested", NewObject().Set("a", NewObject().Set("b", Array{})),
			"{\n  \"a\" : {\n    \"b\" : [ ]\n  }\n}"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := Marshal(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out))
		})
	}
}
