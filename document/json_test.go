package document

import (
	"math"
	"net/netip"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", Null(), `null`},
		{"str", Str("hello"), `"hello"`},
		{"u64", U64(math.MaxUint64), `18446744073709551615`},
		{"i64", I64(-2), `-2`},
		{"f64", F64(1.5), `1.5`},
		{"bool", Bool(true), `true`},
		{
			"date",
			Date(time.Date(1985, 9, 4, 18, 52, 40, 0, time.UTC)),
			`"1985-09-04T18:52:40Z"`,
		},
		{
			"date with nanos",
			Date(time.Date(2022, 1, 1, 0, 0, 1, 100_000_000, time.UTC)),
			`"2022-01-01T00:00:01.1Z"`,
		},
		{"bytes", Bytes([]byte("hello")), `"aGVsbG8="`},
		{"ipv4 renders dotted", IP(netip.MustParseAddr("127.0.0.1")), `"127.0.0.1"`},
		{"ipv6", IP(netip.MustParseAddr("::1")), `"::1"`},
		{"array", Array(U64(1), Str("two"), Null()), `[1,"two",null]`},
		{
			"object keeps order",
			Object(
				Entry{Key: "b", Value: U64(1)},
				Entry{Key: "a", Value: Array(Bool(false))},
			),
			`{"b":1,"a":[false]}`,
		},
		{"empty object", Object(), `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := gojson.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Value
	}{
		{"null", `null`, Null()},
		{"bool", `false`, Bool(false)},
		{"positive integer is u64", `5`, U64(5)},
		{"max u64", `18446744073709551615`, U64(math.MaxUint64)},
		{"negative integer is i64", `-2`, I64(-2)},
		{"fraction is f64", `1.5`, F64(1.5)},
		{"exponent is f64", `1e3`, F64(1000)},
		// Strings stay strings. No date or base64 sniffing.
		{"date-like string", `"2022-01-01T00:00:00Z"`, Str("2022-01-01T00:00:00Z")},
		{"base64-like string", `"aGVsbG8="`, Str("aGVsbG8=")},
		{"array", `[1, -1, "x"]`, Array(U64(1), I64(-1), Str("x"))},
		{
			"object keeps order",
			`{"b": 1, "a": {"nested": true}}`,
			Object(
				Entry{Key: "b", Value: U64(1)},
				Entry{Key: "a", Value: Object(Entry{Key: "nested", Value: Bool(true)})},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, gojson.Unmarshal([]byte(tt.data), &v))
			assert.True(t, tt.want.Equal(v), "got %#v", v)
		})
	}
}

func TestValueUnmarshalJSONInvalid(t *testing.T) {
	var v Value
	assert.Error(t, gojson.Unmarshal([]byte(`{"unterminated": `), &v))
	assert.Error(t, gojson.Unmarshal([]byte(``), &v))
}

func TestValueJSONRoundTrip(t *testing.T) {
	input := `{"name":"quick brown fox","count":3,"score":-1,"ratio":0.5,` +
		`"alive":true,"missing":null,"tags":["a","b"],"nested":{"z":1,"a":2}}`

	var v Value
	require.NoError(t, gojson.Unmarshal([]byte(input), &v))

	data, err := gojson.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, input, string(data))
}
