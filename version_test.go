package hjarta_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	hjarta "github.com/0xalexb/hjarta-config"
)

func TestVersion_DefaultValues(t *testing.T) {
	t.Parallel()

	require.Equal(t, "dev", hjarta.Version)
	require.Equal(t, "dev", hjarta.ConfigVersion)
	require.Equal(t, "unknown", hjarta.CompiledAt)
}
