package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSON_PreservesColumnOrder(t *testing.T) {
	r := Zip(
		[]string{"id", "name", "email", "deleted_at"},
		[]any{int64(42), "Ana", "ana@x.com", nil},
	)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"id":42,"name":"Ana","email":"ana@x.com","deleted_at":null}`, string(out))
}

func TestMarshalJSON_NativeTypes(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r := Record{
		{Name: "zeta", Value: 1.5},
		{Name: "alpha", Value: true},
		{Name: "created_at", Value: created},
		{Name: "avatar", Value: []byte("hi")},
		{Name: "meta", Value: json.RawMessage(`{"k":[1,2]}`)},
	}

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"zeta":1.5,"alpha":true,"created_at":"2024-01-02T03:04:05Z","avatar":"aGk=","meta":{"k":[1,2]}}`,
		string(out),
	)
}

func TestMarshalJSON_Empty(t *testing.T) {
	out, err := json.Marshal(Record{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	out, err = json.Marshal(Record(nil))
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))
}

func TestGetAndColumns(t *testing.T) {
	r := Zip([]string{"id", "name"}, []any{int64(1), "TechXT"})

	v, ok := r.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "TechXT", v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	if diff := cmp.Diff([]string{"id", "name"}, r.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}
