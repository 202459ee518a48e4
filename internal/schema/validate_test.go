package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusBody() *Compiled {
	return MustCompile(Object(Required("name", Number())).Strict())
}

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	v, err := DecodeJSON([]byte(raw))
	require.NoError(t, err)
	return v
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok, "expected *ValidationError, got %T", err)
	return verr
}

func TestValidate_CoercesDeclaredProperties(t *testing.T) {
	c := MustCompile(Object(
		Required("name", Number()),
		Field("label", String()),
		Field("count", Integer()),
		Field("enabled", Boolean()),
	))

	out, err := c.ValidateJSON([]byte(`{"enabled":"true","count":"12","label":7,"name":"42.5","ignored":1}`))
	require.NoError(t, err)

	obj := out.(*JSONObject)
	assert.Equal(t, 4, obj.Len())

	name, _ := obj.Get("name")
	assert.Equal(t, 42.5, name)
	label, _ := obj.Get("label")
	assert.Equal(t, "7", label)
	count, _ := obj.Get("count")
	assert.Equal(t, int64(12), count)
	enabled, _ := obj.Get("enabled")
	assert.Equal(t, true, enabled)

	_, present := obj.Get("ignored")
	assert.False(t, present, "undeclared keys never reach the validated value")
}

func TestValidate_MissingRequired(t *testing.T) {
	for _, body := range []string{``, `{}`, `{"other":1}`} {
		_, err := MustCompile(Object(Required("name", Number()))).ValidateJSON([]byte(body))
		verr := requireValidationError(t, err)
		assert.Equal(t, ReasonMissingField, verr.Reason, "body %q", body)
		assert.Equal(t, "name", verr.Path)
		assert.Equal(t, "name: missing field", verr.Error())
	}
}

func TestValidate_UnexpectedFieldEvenWhenDeclaredAreValid(t *testing.T) {
	_, err := statusBody().ValidateJSON([]byte(`{"name":1,"extra":true}`))
	verr := requireValidationError(t, err)
	assert.Equal(t, ReasonUnexpectedField, verr.Reason)
	assert.Equal(t, "extra", verr.Path)
}

func TestValidate_ReportsFirstUnexpectedInBodyOrder(t *testing.T) {
	_, err := statusBody().ValidateJSON([]byte(`{"zeta":1,"name":1,"alpha":2}`))
	verr := requireValidationError(t, err)
	assert.Equal(t, "zeta", verr.Path)
}

func TestValidate_TypeMismatch(t *testing.T) {
	_, err := statusBody().ValidateJSON([]byte(`{"name":"abc"}`))
	verr := requireValidationError(t, err)
	assert.Equal(t, ReasonTypeMismatch, verr.Reason)
	assert.Equal(t, "name", verr.Path)
	assert.Equal(t, TypeNumber, verr.Expected)
	assert.Equal(t, "string", verr.Actual)
	assert.Equal(t, "name: expected number, got string", verr.Error())
}

func TestValidate_DeclaredFailureWinsOverUnexpected(t *testing.T) {
	_, err := statusBody().ValidateJSON([]byte(`{"extra":true}`))
	verr := requireValidationError(t, err)
	assert.Equal(t, ReasonMissingField, verr.Reason)
}

func TestValidate_EmptyStrictSchemaAcceptsOnlyEmptyObject(t *testing.T) {
	c := MustCompile(Object().Strict())

	out, err := c.ValidateJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, out.(*JSONObject).Len())

	_, err = c.ValidateJSON([]byte(`{"a":1}`))
	assert.Equal(t, ReasonUnexpectedField, requireValidationError(t, err).Reason)

	_, err = c.ValidateJSON([]byte(`[]`))
	verr := requireValidationError(t, err)
	assert.Equal(t, ReasonTypeMismatch, verr.Reason)
	assert.Equal(t, "body", verr.Field())
}

func TestValidate_NestedPaths(t *testing.T) {
	c := MustCompile(Object(
		Required("address", Object(Required("city", String())).Strict()),
		Field("tags", Array(Integer())),
	))

	tests := []struct {
		name   string
		body   string
		reason Reason
		path   string
	}{
		{"nested missing", `{"address":{}}`, ReasonMissingField, "address.city"},
		{"nested unexpected", `{"address":{"city":"x","zip":1}}`, ReasonUnexpectedField, "address.zip"},
		{"nested not object", `{"address":"x"}`, ReasonTypeMismatch, "address"},
		{"array element", `{"address":{"city":"x"},"tags":[1,"2","x"]}`, ReasonTypeMismatch, "tags[2]"},
		{"array not array", `{"address":{"city":"x"},"tags":1}`, ReasonTypeMismatch, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ValidateJSON([]byte(tt.body))
			verr := requireValidationError(t, err)
			assert.Equal(t, tt.reason, verr.Reason)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestValidate_NestedSuccessKeepsOnlyDeclared(t *testing.T) {
	c := MustCompile(Object(
		Required("address", Object(Required("city", String()))),
		Field("tags", Array(Integer())),
	))

	out, err := c.ValidateJSON([]byte(`{"address":{"city":"Oslo","zip":"0150"},"tags":["1",2]}`))
	require.NoError(t, err)

	addr, _ := out.(*JSONObject).Get("address")
	assert.Equal(t, 1, addr.(*JSONObject).Len())
	tags, _ := out.(*JSONObject).Get("tags")
	assert.Equal(t, []any{int64(1), int64(2)}, tags)
}

func TestValidate_NullIsMismatch(t *testing.T) {
	_, err := statusBody().ValidateJSON([]byte(`{"name":null}`))
	verr := requireValidationError(t, err)
	assert.Equal(t, ReasonTypeMismatch, verr.Reason)
	assert.Equal(t, "null", verr.Actual)
}

func TestValidateJSON_Malformed(t *testing.T) {
	for _, body := range []string{`{"name":`, `{"name":1}{}`, `nope`} {
		_, err := statusBody().ValidateJSON([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedBody, "body %q", body)
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	in := mustDecode(t, `{"name":"7","extra":1}`)
	_, err := MustCompile(Object(Required("name", Number()))).Validate(in)
	require.NoError(t, err)

	obj := in.(*JSONObject)
	assert.Equal(t, 2, obj.Len())
	name, _ := obj.Get("name")
	assert.Equal(t, "7", name)
}

func TestCompile_RejectsBadDeclarations(t *testing.T) {
	tests := []struct {
		name string
		s    Schema
	}{
		{"missing type", Schema{}},
		{"unknown type", Schema{Type: "date"}},
		{"unknown policy", Schema{Type: TypeObject, Additional: "sometimes"}},
		{"duplicate names", Object(Field("a", String()), Field("a", Number()))},
		{"empty name", Object(Field("", String()))},
		{"nested bad type", Object(Field("a", Schema{Type: "nope"}))},
		{"properties on scalar", Schema{Type: TypeString, Properties: []Property{Field("a", String())}}},
		{"bad items", Array(Schema{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.s)
			assert.Error(t, err)
		})
	}
}
