package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusResult struct {
	Status string `json:"status"`
	Foo    string `json:"foo"`
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestResponses_SelectPrecedence(t *testing.T) {
	exact := Object(Field("exact", String()))
	class := Object(Field("class", String()))
	fallback := Object(Field("fallback", String()))

	r, err := CompileResponses(ResponseSchemas{"201": exact, "2xx": class, "default": fallback})
	require.NoError(t, err)

	c, ok := r.Select(201)
	require.True(t, ok)
	assert.Equal(t, "exact", c.Schema().Properties[0].Name)

	c, ok = r.Select(204)
	require.True(t, ok)
	assert.Equal(t, "class", c.Schema().Properties[0].Name)

	c, ok = r.Select(404)
	require.True(t, ok)
	assert.Equal(t, "fallback", c.Schema().Properties[0].Name)
}

func TestResponses_NoSchemaPassesThrough(t *testing.T) {
	r, err := CompileResponses(ResponseSchemas{"200": Object(Field("status", String()))})
	require.NoError(t, err)

	in := statusResult{Status: "ok", Foo: "bar"}
	out, err := r.Filter(202, in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	var nilResponses *Responses
	out, err = nilResponses.Filter(200, in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestResponses_FilterStripsUndeclared(t *testing.T) {
	r, err := CompileResponses(ResponseSchemas{"200": Object(Field("status", String()))})
	require.NoError(t, err)

	out, err := r.Filter(200, statusResult{Status: "ok", Foo: "bar"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, marshal(t, out))

	out, err = r.Filter(200, map[string]any{"foo": "bar", "status": "ok", "secret": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, marshal(t, out))
}

func TestResponses_FilterConformsTypes(t *testing.T) {
	r, err := CompileResponses(ResponseSchemas{"200": Object(
		Field("status", String()),
		Field("count", Integer()),
		Field("note", String()),
	)})
	require.NoError(t, err)

	out, err := r.Filter(200, map[string]any{"status": 200, "count": "3", "note": nil})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"200","count":3,"note":null}`, marshal(t, out))
}

func TestResponses_FilterSerializationErrors(t *testing.T) {
	r, err := CompileResponses(ResponseSchemas{"200": Object(Field("status", Number()))})
	require.NoError(t, err)

	_, err = r.Filter(200, map[string]any{"status": "ok"})
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 200, serr.Status)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Path)

	_, err = r.Filter(200, map[string]any{"status": make(chan int)})
	require.ErrorAs(t, err, &serr)
}

func TestCompileResponses_RejectsBadKeys(t *testing.T) {
	for _, key := range []string{"ok", "99", "600", "6xx", "2x"} {
		_, err := CompileResponses(ResponseSchemas{key: String()})
		assert.Error(t, err, "key %q", key)
	}
}
