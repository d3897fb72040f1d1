package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
}

func TestColorHelpers(t *testing.T) {
	// Color helpers should return non-empty strings
	assert.NotEmpty(t, Cyan("test"))
}

func TestPercentColor(t *testing.T) {
	assert.Contains(t, PercentColor(40), "40.00%")
	assert.Contains(t, PercentColor(12.5), "12.50%")
	assert.Contains(t, PercentColor(3.333), "3.33%")
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Metric", "Time"})
	require.NotNil(t, table)

	table.Append([]string{"Total coding time", "0h 50m"})
	table.Append([]string{"Longest break", "4h 30m"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "0h 50m"), "table output should contain durations")
	assert.True(t, strings.Contains(result, "4h 30m"), "table output should contain durations")
}
