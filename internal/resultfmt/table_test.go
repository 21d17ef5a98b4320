package resultfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/value"
)

func TestFormatResultSuccessAndEmpty(t *testing.T) {
	f := NewFormatter()
	f.Color = false

	assert.Contains(t, f.FormatResult(value.Success()), "OK")
	assert.Contains(t, f.FormatResult(value.Empty()), "Empty result")
}

func TestFormatResultError(t *testing.T) {
	f := NewFormatter()
	f.Color = false
	out := f.FormatResult(value.ErrorResult("vertex not found"))
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "vertex not found")
}

func TestFormatResultCount(t *testing.T) {
	f := NewFormatter()
	f.Color = false
	out := f.FormatResult(value.CountResult(42))
	assert.Contains(t, out, "42")
}

func TestFormatDataSetRendersHeaderAndRows(t *testing.T) {
	f := NewFormatter()
	f.Color = false
	ds := value.MustDataSet([]string{"name", "age"}, []value.Row{
		{value.String("alice"), value.Int(30)},
		{value.String("bob"), value.Int(25)},
	})

	out := f.FormatDataSet(ds)
	assert.True(t, strings.Contains(out, "name"))
	assert.True(t, strings.Contains(out, "alice"))
	assert.True(t, strings.Contains(out, "bob"))
	assert.Contains(t, out, "2 rows")
}

func TestFormatDataSetEmptyRows(t *testing.T) {
	f := NewFormatter()
	f.Color = false
	ds, err := value.NewDataSet([]string{"n"}, nil)
	require.NoError(t, err)

	out := f.FormatDataSet(ds)
	assert.Contains(t, out, "No rows")
	assert.Contains(t, out, "n")
}

func TestFormatDataSetTruncatesLongValues(t *testing.T) {
	f := NewFormatter()
	f.Color = false
	f.MaxWidth = 5
	f.TruncateString = "..."

	long := strings.Repeat("x", 20)
	ds := value.MustDataSet([]string{"v"}, []value.Row{{value.String(long)}})

	out := f.FormatDataSet(ds)
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)
}
