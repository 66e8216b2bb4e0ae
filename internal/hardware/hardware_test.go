package hardware

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"settings-service/internal/logger"
	"settings-service/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func TestDetect(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, types.VariantUnknown, Detect(root))

	touch(t, root, EONMarker, "")
	assert.Equal(t, types.VariantEON, Detect(root))

	touch(t, root, TICIMarker, "")
	assert.Equal(t, types.VariantTICI, Detect(root), "TICI wins over EON")
}

func TestOSVersion(t *testing.T) {
	root := t.TempDir()
	touch(t, root, VersionFile, "  1.5\n")

	assert.Equal(t, "AGNOS 1.5", OSVersion(root, types.VariantTICI))
	assert.Equal(t, "NEOS 1.5", OSVersion(root, types.VariantEON))

	// unknown hardware reports the host platform instead
	v := OSVersion(root, types.VariantUnknown)
	assert.NotEmpty(t, v)
	assert.NotContains(t, v, "AGNOS")
}

func TestExpand(t *testing.T) {
	assert.Equal(t, "sh -c 'cd /data/videos && rm -f *.*'", Expand("sh -c 'cd {dir} && rm -f *.*'", "/data/videos"))
}

func TestExecRunner(t *testing.T) {
	r := NewExecRunner(logger.Discard(), 0)

	res := r.Run(context.Background(), "sh -c 'echo hello world'")
	require.True(t, res.Success(), "unexpected failure: %+v", res)
	assert.Equal(t, "hello world", res.Output)

	res = r.Run(context.Background(), "sh -c 'exit 3'")
	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
	assert.NoError(t, res.Err)

	res = r.Run(context.Background(), "")
	assert.False(t, res.Success())
	assert.Error(t, res.Err)

	res = r.Run(context.Background(), "/nonexistent/binary --flag")
	assert.False(t, res.Success())
	assert.Error(t, res.Err)
}
