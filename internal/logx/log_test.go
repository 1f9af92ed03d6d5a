package logx

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	prov := Prov(NewText(&buf, false))

	Debug(`hidden`, prov)
	Info(`shown`, prov, `k`, 1)
	assert.NotContains(t, buf.String(), `hidden`)
	assert.Contains(t, buf.String(), `shown`)
	assert.Contains(t, buf.String(), `k=1`)

	buf.Reset()
	prov = Prov(NewText(&buf, true))
	Debug(`visible now`, prov)
	assert.Contains(t, buf.String(), `visible now`)

	// nil providers are no-ops
	Info(`nothing`, nil)
}

func TestIsErr(t *testing.T) {
	var buf bytes.Buffer
	prov := Prov(NewText(&buf, false))
	assert.False(t, IsErr(nil, prov, slog.LevelError))
	assert.True(t, IsErr(errors.New(`bad row`), prov, slog.LevelError))
	assert.Contains(t, buf.String(), `bad row`)
}

func TestTimeIt(t *testing.T) {
	var buf bytes.Buffer
	prov := Prov(NewText(&buf, false))
	called := false
	require.NoError(t, TimeIt(func() error { called = true; return nil }, `op`, prov))
	assert.True(t, called)
	assert.Contains(t, buf.String(), `duration=`)
	assert.Error(t, TimeIt(nil, ``, prov))
}

func TestStepProgress(t *testing.T) {
	var buf bytes.Buffer
	fn := StepProgress(`rotate`, Prov(NewText(&buf, true)))
	for i := 1; i <= 100; i++ {
		fn.Report(i, 100)
	}
	// steps 0 through 10, one record each
	assert.Equal(t, 11, strings.Count(buf.String(), `msg=rotate`))

	var none ProgressFunc
	none.Report(1, 2)
}
