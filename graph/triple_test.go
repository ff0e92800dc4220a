package graph

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/voc"
)

func TestLiteralValue(t *testing.T) {
	for _, c := range []struct {
		name string
		lit  Literal
		exp  Value
	}{
		{"plain", Literal{Lexical: "Ada"}, String("Ada")},
		{"xsd string", Literal{Lexical: "Ada", Datatype: voc.XSDString}, String("Ada")},
		{"lang", Literal{Lexical: "Ada", Lang: "en"}, String("Ada")},
		{"integer", Literal{Lexical: "36", Datatype: voc.XSDInteger}, Int(36)},
		{"boolean", Literal{Lexical: "true", Datatype: voc.XSDBoolean}, Bool(true)},
		{"custom", Literal{Lexical: "12cm", Datatype: "http://example.org/length"}, Raw("12cm", "http://example.org/length")},
	} {
		t.Run(c.name, func(t *testing.T) {
			got := c.lit.Value()
			require.True(t, c.exp.Equal(got), "got %v (%v)", got, got.Kind())
		})
	}
}

func TestLiteralOf(t *testing.T) {
	require.Equal(t, Literal{Lexical: "5", Datatype: voc.XSDInteger}, LiteralOf(Int(5)))
	require.Equal(t, Literal{Lexical: "x"}, LiteralOf(String("x")))
	require.Equal(t, Literal{Lexical: "12cm", Datatype: "urn:len"}, LiteralOf(Raw("12cm", "urn:len")))
}

func TestValueArray(t *testing.T) {
	v := String("a").Append(String("b")).Append(String("a"))
	require.True(t, v.IsArray())
	require.Len(t, v.Values(), 2)
	require.True(t, v.Contains(String("b")))
	require.Equal(t, []interface{}{"a", "b"}, v.Native())

	nested := Array(v, Int(1))
	require.Len(t, nested.Values(), 3)
}

func TestValueJSON(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, v := range []Value{
		String("Ada"), Int(-3), Float(1.5), Bool(true), Time(ts),
		Raw("12cm", "urn:len"), Array(String("a"), Int(2)),
	} {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		var got Value
		require.NoError(t, json.Unmarshal(data, &got))
		require.True(t, v.Equal(got), "%s", data)
	}
	var bad Value
	require.Error(t, json.Unmarshal([]byte(`{"type":"nope","value":1}`), &bad))
}

func TestTripleGet(t *testing.T) {
	tb := refs.NewTable()
	tr := Make(tb, "ex:a", "ex:p", "ex:b")
	s, ok := tr.Get(quad.Subject)
	require.True(t, ok)
	require.Equal(t, tb.Intern("ex:a"), s)
	o, ok := tr.Get(quad.Object)
	require.True(t, ok)
	require.Equal(t, tb.Intern("ex:b"), o)
	_, ok = tr.Get(quad.Label)
	require.False(t, ok)

	lt := MakeLiteral(tb, "ex:a", "ex:name", Literal{Lexical: "A"})
	_, ok = lt.Get(quad.Object)
	require.False(t, ok)
	l, ok := lt.Object.Literal()
	require.True(t, ok)
	require.Equal(t, "A", l.Lexical)

	require.Equal(t, tr, Make(tb, "ex:a", "ex:p", "ex:b"))
}
