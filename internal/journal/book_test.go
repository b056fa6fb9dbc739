package journal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookJSONShape(t *testing.T) {
	b := Book{ID: "1", Title: "Dune", Author: "Herbert", ReadLevel: ReadLevelModerate, Status: StatusToBeRead}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","title":"Dune","author":"Herbert","readLevel":"moderate","status":"tbr"}`, string(data))

	b.markFinished()
	b.CoverURL = "https://covers.example/1.jpg"
	data, err = json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","title":"Dune","author":"Herbert","readLevel":"moderate","status":"finished",
		"coverUrl":"https://covers.example/1.jpg","rating":0,"notes":""}`, string(data))
}

func TestBookJSONRejectsUnknownEnums(t *testing.T) {
	var c Collection
	err := json.Unmarshal([]byte(`[{"id":"1","title":"A","author":"B","readLevel":"easy","status":"reading"}]`), &c)
	require.Error(t, err)

	err = json.Unmarshal([]byte(`[{"id":"1","title":"A","author":"B","readLevel":"trivial","status":"tbr"}]`), &c)
	require.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"tbr":        StatusToBeRead,
		"to-be-read": StatusToBeRead,
		" Finished ": StatusFinished,
		"done":       StatusFinished,
	}
	for in, want := range tests {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatus("reading")
	require.Error(t, err)
}

func TestCollectionValidate(t *testing.T) {
	require.NoError(t, Collection{{ID: "a"}, {ID: "b"}}.Validate())
	require.Error(t, Collection{{ID: "a"}, {ID: "a"}}.Validate())
	require.Error(t, Collection{{ID: ""}}.Validate())
}

func TestCollectionClone_NilIsEmpty(t *testing.T) {
	var c Collection
	clone := c.Clone()
	require.NotNil(t, clone)
	assert.Empty(t, clone)

	data, err := json.Marshal(clone)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
