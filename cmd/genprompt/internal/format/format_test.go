package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/germanamz/genprompt/pkg/expenses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Plain(t *testing.T) {
	assert.Equal(t, "genprompt: boom", Error(errors.New("boom"), false))
}

func TestError_Styled(t *testing.T) {
	out := Error(errors.New("boom"), true)
	assert.Contains(t, out, "genprompt:")
	assert.Contains(t, out, "boom")
}

func TestMarkdown_Render(t *testing.T) {
	md, err := NewMarkdown(80, "notty")
	require.NoError(t, err)

	out := md.Render("# Shop names\n\n- Everlasting Blooms\n")
	assert.Contains(t, out, "Shop names")
	assert.Contains(t, out, "Everlasting Blooms")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestMarkdown_NilPassthrough(t *testing.T) {
	var md *Markdown
	assert.Equal(t, "plain", md.Render("plain"))
}

func TestIsTerminal_File(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.False(t, IsTerminal(f))
	assert.Equal(t, DefaultWidth, Width(f))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short", "Coffee", 10, "Coffee"},
		{"exact", "0123456789", 10, "0123456789"},
		{"cut", "Hotel stay in Lisbon", 10, "Hotel s..."},
		{"newline", "a\nb", 10, "a b"},
		{"wide runes", "日本語のレシート", 8, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func sampleExpenses() []expenses.Expense {
	return []expenses.Expense{
		{
			ID:          "b",
			Description: "Coffee beans and pastries",
			Date:        "2024-09-10",
			Amount:      12.5,
			Category:    "food",
			CreatedAt:   time.Date(2024, 9, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:          "a",
			Description: "Taxi to airport",
			Date:        "Unknown",
			Amount:      30,
			Category:    "miscellaneous",
			CreatedAt:   time.Date(2024, 9, 9, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteExpenses_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExpenses(&buf, sampleExpenses(), "table"))

	out := buf.String()
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "Coffee beans and pastries")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "42.50")
	assert.Contains(t, out, "miscellaneous")
}

func TestWriteExpenses_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExpenses(&buf, nil, ""))
	assert.Contains(t, buf.String(), "(no expenses)")
}

func TestWriteExpenses_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExpenses(&buf, sampleExpenses(), "JSON"))

	var got []expenses.Expense
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
}

func TestWriteExpenses_UnknownFormat(t *testing.T) {
	err := WriteExpenses(&bytes.Buffer{}, nil, "xml")
	assert.EqualError(t, err, "unsupported format: xml")
}
