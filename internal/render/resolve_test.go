package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Value {
	t.Helper()
	v, err := Decode([]byte(raw))
	require.NoError(t, err)
	return v
}

func TestResolvePrecedence(t *testing.T) {
	// Both candidate paths populated: the first in precedence order wins.
	root := decode(t, `{
		"project_name": "Legacy Name",
		"analysis_metadata": {"suggested_name": "Preferred Name"}
	}`)

	assert.Equal(t, "Preferred Name", ResolveText(root, FieldName))
}

func TestResolveFallsThroughEmptyValues(t *testing.T) {
	root := decode(t, `{
		"keywords": [],
		"analysis": {"keywords": null},
		"keywords_nlp": ["saas", "crm"]
	}`)

	v, ok := Resolve(root, FieldKeywords)
	require.True(t, ok)
	assert.Equal(t, []string{"saas", "crm"}, v.Strings())
}

func TestResolveMissingFieldUsesPlaceholder(t *testing.T) {
	root := decode(t, `{}`)

	for _, f := range Fields {
		v, ok := Resolve(root, f)
		assert.False(t, ok, f.Name)
		assert.True(t, v.IsEmpty(), f.Name)
		assert.Equal(t, f.Placeholder, ResolveText(root, f), f.Name)
	}
}

func TestResolveUnwrapsSummaryObject(t *testing.T) {
	root := decode(t, `{"executive_summary": {"summary": "A short pitch."}}`)

	assert.Equal(t, "A short pitch.", ResolveText(root, FieldSummary))
}

func TestResolveCoercesNonStringScalars(t *testing.T) {
	root := decode(t, `{"project_name": 42}`)

	assert.Equal(t, "42", ResolveText(root, FieldName))
}

func TestResolveLegacyAnalysisNesting(t *testing.T) {
	root := decode(t, `{"analysis": {"core_features": ["Auth", "Dashboard"]}}`)

	v, ok := Resolve(root, FieldFeatures)
	require.True(t, ok)
	assert.Equal(t, []string{"Auth", "Dashboard"}, v.Strings())
}

func TestResolveIsDeterministic(t *testing.T) {
	raw := `{
		"keywords": ["a"],
		"analysis": {"keywords": ["b"]},
		"keywords_nlp": ["c"]
	}`
	first := ResolveText(decode(t, raw), FieldKeywords)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ResolveText(decode(t, raw), FieldKeywords))
	}
	assert.Equal(t, "a", first)
}

func TestValueTextCoercions(t *testing.T) {
	root := decode(t, `{
		"n": 3.5,
		"b": true,
		"arr": ["x", 1, ""],
		"obj": {"k": "v", "j": 2}
	}`)

	n, _ := root.Get("n")
	assert.Equal(t, "3.5", n.Text())

	b, _ := root.Get("b")
	assert.Equal(t, "true", b.Text())

	arr, _ := root.Get("arr")
	assert.Equal(t, "x, 1", arr.Text())

	obj, _ := root.Get("obj")
	assert.Equal(t, "k: v; j: 2", obj.Text())
}

func TestObjectKeysKeepPayloadOrder(t *testing.T) {
	root := decode(t, `{"z": 1, "a": 2, "m": 3}`)

	assert.Equal(t, []string{"z", "a", "m"}, root.Keys())
}
