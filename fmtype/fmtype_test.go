package fmtype_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/fmgen/fmtype"
)

type status string

type customer struct {
	Name   string            `json:"name"`
	Age    fmtype.Numerish   `json:"age"`
	Score  fmtype.NullNumber `json:"score"`
	Status status            `json:"status"`
}

var zCustomer = fmtype.NewObject("Customer",
	fmtype.Field("name", fmtype.String()),
	fmtype.Field("age", fmtype.NumberOrText()),
	fmtype.Field("score", fmtype.StrictNumber()),
	fmtype.Field("status", fmtype.Enum("Open", "Closed")),
)

func TestObjectDecode(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		data := map[string]any{"name": "Ada", "age": 36.0, "score": 9.5, "status": "Open", "extra": true}
		var c customer
		require.NoError(t, zCustomer.Decode(data, &c))
		assert.Equal(t, "Ada", c.Name)
		assert.True(t, c.Age.IsNumber())
		assert.Equal(t, "36", c.Age.String())
		assert.Equal(t, fmtype.NumberValue(9.5), c.Score)
		assert.Equal(t, status("Open"), c.Status)

		buf, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ada","age":36,"score":9.5,"status":"Open"}`, string(buf))
	})

	t.Run("NumerishText", func(t *testing.T) {
		data := map[string]any{"name": "Ada", "age": "unknown", "score": "n/a", "status": "Closed"}
		var c customer
		require.NoError(t, zCustomer.Decode(data, &c))
		assert.False(t, c.Age.IsNumber())
		assert.Equal(t, "unknown", c.Age.String())
		_, ok := c.Age.Float64()
		assert.False(t, ok)
		assert.False(t, c.Score.Valid)

		buf, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ada","age":"unknown","score":null,"status":"Closed"}`, string(buf))
	})

	t.Run("StrictNumericString", func(t *testing.T) {
		data := map[string]any{"name": "Ada", "age": "", "score": " 12 ", "status": "Open"}
		var c customer
		require.NoError(t, zCustomer.Decode(data, &c))
		assert.Equal(t, fmtype.NumberValue(12), c.Score)
	})

	t.Run("Issues", func(t *testing.T) {
		data := map[string]any{"name": 1.0, "age": true, "score": 1.0, "status": "Pending"}
		var c customer
		err := zCustomer.Decode(data, &c)
		require.Error(t, err)
		var verr *fmtype.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Customer", verr.Object)
		assert.Equal(t, fmtype.Issues{
			{Path: "name", Message: "expected string, got number"},
			{Path: "age", Message: "expected string or number, got boolean"},
			{Path: "status", Message: `expected one of ["Open", "Closed"], got "Pending"`},
		}, verr.Issues)
		assert.Contains(t, err.Error(), "fmtype: invalid Customer: name: expected string")
	})

	t.Run("Required", func(t *testing.T) {
		err := zCustomer.Decode(map[string]any{"name": "Ada"}, &customer{})
		var verr *fmtype.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Issues, 3)
		assert.Equal(t, "required", verr.Issues[0].Message)
	})
}

func TestEnumCatch(t *testing.T) {
	rule := fmtype.Enum("Open", "Closed", "").Catch("")
	v, err := rule.Check("Archived")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = rule.Check(nil)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = rule.Check("Closed")
	require.NoError(t, err)
	assert.Equal(t, "Closed", v)

	// Catch leaves the original rule untouched.
	strict := fmtype.Enum("Open")
	_ = strict.Catch("")
	_, err = strict.Check("Closed")
	assert.Error(t, err)
	assert.Equal(t, []string{"Open"}, strict.Values())
}

func TestList(t *testing.T) {
	order := fmtype.NewObject("Order", fmtype.Field("Orders::total", fmtype.NumberOrText()))
	portals := fmtype.NewObject("CustomerPortals", fmtype.Field("Orders", fmtype.List(order)))

	type orderRow struct {
		Total fmtype.Numerish `json:"Orders::total"`
	}
	type customerPortals struct {
		Orders []orderRow `json:"Orders"`
	}

	data := map[string]any{
		"Orders": []map[string]any{
			{"Orders::total": 10.0, "recordId": "1"},
			{"Orders::total": "", "recordId": "2"},
		},
	}
	var p customerPortals
	require.NoError(t, portals.Decode(data, &p))
	require.Len(t, p.Orders, 2)
	assert.Equal(t, fmtype.NumberOf(10), p.Orders[0].Total)
	assert.Equal(t, fmtype.TextOf(""), p.Orders[1].Total)

	bad := map[string]any{"Orders": []any{map[string]any{"Orders::total": false}}}
	err := portals.Decode(bad, &p)
	var verr *fmtype.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Orders.0.Orders::total", verr.Issues[0].Path)

	v, err := fmtype.List(fmtype.String()).Check(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestNumerishJSON(t *testing.T) {
	var n fmtype.Numerish
	require.NoError(t, json.Unmarshal([]byte(`42.5`), &n))
	f, ok := n.Float64()
	assert.True(t, ok)
	assert.Equal(t, 42.5, f)

	require.NoError(t, json.Unmarshal([]byte(`"17"`), &n))
	assert.False(t, n.IsNumber())
	f, ok = n.Float64()
	assert.True(t, ok)
	assert.Equal(t, 17.0, f)

	assert.Error(t, json.Unmarshal([]byte(`true`), &n))

	var nn fmtype.NullNumber
	require.NoError(t, json.Unmarshal([]byte(`null`), &nn))
	assert.False(t, nn.Valid)
	buf, err := json.Marshal(nn)
	require.NoError(t, err)
	assert.Equal(t, "null", string(buf))
}

func TestObjectDecodeByPosition(t *testing.T) {
	person := fmtype.NewObject("People",
		fmtype.Field("Name, Last", fmtype.String()),
		fmtype.Field("Name", fmtype.String()),
		fmtype.Field("-", fmtype.String()),
		fmtype.Field(`Say "hi"`, fmtype.NumberOrText()),
	)
	type row struct {
		NameLast string          `json:"-"`
		Name     string          `json:"Name"`
		X        string          `json:"-,"`
		SayHi    fmtype.Numerish `json:"-"`
		internal int
	}

	var r row
	data := map[string]any{"Name, Last": "Lovelace", "Name": "Ada", "-": "dash", `Say "hi"`: 3.0}
	require.NoError(t, person.Decode(data, &r))
	assert.Equal(t, "Lovelace", r.NameLast)
	assert.Equal(t, "Ada", r.Name)
	assert.Equal(t, "dash", r.X)
	assert.Equal(t, fmtype.NumberOf(3), r.SayHi)
	assert.Zero(t, r.internal)

	t.Run("Map", func(t *testing.T) {
		var m map[string]any
		require.NoError(t, person.Decode(data, &m))
		assert.Equal(t, "Lovelace", m["Name, Last"])
	})

	t.Run("Mismatch", func(t *testing.T) {
		var short struct{ Name string }
		err := person.Decode(data, &short)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has 1 exported fields, want 4")

		assert.Error(t, person.Decode(data, r))
	})
}
