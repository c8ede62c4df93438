package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructure_Array(t *testing.T) {
	s, err := ParseStructure([]byte(`[
		{"id": 10, "parent": null},
		{"id": 11, "parent": 10, "remove": false},
		{"id": 12, "parent": "11", "remove": true},
		{"id": 13}
	]`))
	require.NoError(t, err)
	require.Len(t, s, 4)

	assert.True(t, s[0].HasParent)
	assert.Nil(t, s[0].Parent)
	assert.Equal(t, int64(10), s[1].ParentOf())
	assert.Equal(t, int64(11), s[2].ParentOf())
	assert.True(t, s[2].Remove)
	assert.False(t, s[3].HasParent)
}

func TestParseStructure_ObjectKeepsKeyOrder(t *testing.T) {
	s, err := ParseStructure([]byte(`{"30": {"parent": null}, "5": {"parent": 30}, "17": {"parent": null, "remove": "1"}}`))
	require.NoError(t, err)
	require.Len(t, s, 3)

	assert.Equal(t, []int64{30, 5, 17}, []int64{s[0].ID, s[1].ID, s[2].ID})
	assert.Equal(t, int64(30), s[1].ParentOf())
	assert.True(t, s[2].Remove)
}

func TestParseStructure_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"scalar", `42`},
		{"missing id", `[{"parent": null}]`},
		{"bad key", `{"abc": {"parent": null}}`},
		{"bad parent", `[{"id": 1, "parent": {"x": 1}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStructure([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
