package spawn

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDoesNotWaitForCompletion(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	marker := filepath.Join(t.TempDir(), "ran")
	start := time.Now()
	require.NoError(Run("sleep 0.2 && touch " + marker))
	assert.Less(time.Since(start), 100*time.Millisecond, "Run must return before the child finishes")

	require.Eventually(func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, time.Second, 10*time.Millisecond)
}
