package cli

import (
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/pkg/errors"
)

func cacheEnv(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("CHEMCHECK_REDIS_ENABLED", "true")
	t.Setenv("CHEMCHECK_REDIS_ADDR", mr.Addr())
	t.Setenv("CHEMCHECK_REDIS_KEY_PREFIX", "t:")
	return mr
}

func TestCacheCmd_PurgeRemovesOnlyVerdicts(t *testing.T) {
	mr := cacheEnv(t)
	require.NoError(t, mr.Set("t:verdict:aa", `{"accepted":true}`))
	require.NoError(t, mr.Set("t:verdict:bb", `{"accepted":false}`))
	require.NoError(t, mr.Set("t:other", "keep"))

	out, _, err := run(t, "", "-o", "json", "cache", "purge")
	require.NoError(t, err)

	var res cacheResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(2), res.Removed)
	assert.False(t, mr.Exists("t:verdict:aa"))
	assert.True(t, mr.Exists("t:other"))
}

func TestCacheCmd_DropForgetsOnePair(t *testing.T) {
	mr := cacheEnv(t)
	key, err := verdictKey("2H2 + O2 -> 2H2O", "2H2 + O2 -> 2H2O")
	require.NoError(t, err)
	other, err := verdictKey("H2O", "H2O2")
	require.NoError(t, err)
	require.NoError(t, mr.Set("t:"+key, `{"accepted":true}`))
	require.NoError(t, mr.Set("t:"+other, `{"accepted":false}`))

	out, _, err := run(t, "", "cache", "drop", "--target", "2H2 + O2 -> 2H2O", "--test", "2H2 + O2 -> 2H2O")
	require.NoError(t, err)
	assert.Equal(t, "dropped "+key+"\n", out)
	assert.False(t, mr.Exists("t:"+key))
	assert.True(t, mr.Exists("t:"+other))
}

func TestCacheCmd_Errors(t *testing.T) {
	_, _, err := run(t, "", "cache", "purge")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), "redis disabled: %v", err)

	cacheEnv(t)
	_, _, err = run(t, "", "cache", "drop", "--target", "H2O")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, _, err = run(t, "", "cache", "drop", "--target", "A -> B -> C", "--test", "H2O")
	assert.True(t, errors.IsCode(err, errors.ErrCodeChemParseFailed))
}
