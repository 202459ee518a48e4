package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reflectAddress struct {
	City string `json:"city"`
}

type reflectOrder struct {
	ID      int64          `json:"id"`
	Total   float64        `json:"total"`
	Note    string         `json:"note,omitempty"`
	Paid    bool           `json:"paid"`
	Tags    []string       `json:"tags,omitempty"`
	Address reflectAddress `json:"address"`
}

func TestFromType(t *testing.T) {
	s, err := FromType(reflectOrder{})
	require.NoError(t, err)

	assert.Equal(t, TypeObject, s.Type)
	assert.True(t, s.Rejects())

	var names []string
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"id", "total", "note", "paid", "tags", "address"}, names)
	assert.Equal(t, []string{"id", "total", "paid", "address"}, s.RequiredNames())

	assert.Equal(t, TypeInteger, s.Properties[0].Type)
	assert.Equal(t, TypeNumber, s.Properties[1].Type)
	assert.Equal(t, TypeBoolean, s.Properties[3].Type)
	require.NotNil(t, s.Properties[4].Items)
	assert.Equal(t, TypeString, s.Properties[4].Items.Type)
	assert.Equal(t, TypeObject, s.Properties[5].Type)
}

func TestFromType_ProjectsLikeDeclared(t *testing.T) {
	c := MustCompile(MustFromType(statusResult{}))

	out := c.Project(mustDecode(t, `{"status":"ok","foo":"bar","other":1}`))
	assert.Equal(t, []string{"status", "foo"}, keys(out.(*JSONObject)))
}

func TestFromType_Unsupported(t *testing.T) {
	type withAny struct {
		Value any `json:"value"`
	}
	_, err := FromType(withAny{})
	assert.Error(t, err)
}
