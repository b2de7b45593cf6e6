package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	reg := New("v1.2.3")
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.BuildInfo.WithLabelValues("v1.2.3")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["avelements_build_info"])
	assert.True(t, names["go_goroutines"])
}
