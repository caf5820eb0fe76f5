//go:build e2e

package e2e

import (
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Бинарник собирается заранее: go build -o storefront ./cmd/storefront
const binary = "../storefront"

func runStorefront(t *testing.T, args ...string) (string, int) {
	t.Helper()

	cmd := exec.Command(binary, args...)
	cmd.Env = append(cmd.Environ(),
		"STOREFRONT_PRODUCER_MAX_DELAY=1ms",
		"STOREFRONT_CONSUMER_MAX_DELAY=5ms",
	)

	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode()
	}
	require.NoError(t, err)

	return string(out), 0
}

func TestStorefront(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		purchases int
		goneHome  int
	}{
		{name: "Single slot", args: []string{"1", "1", "3"}, purchases: 3, goneHome: 1},
		{name: "Nothing to sell", args: []string{"5", "4", "0"}, purchases: 0, goneHome: 4},
		{name: "Crowded store", args: []string{"2", "3", "10"}, purchases: 10, goneHome: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, code := runStorefront(t, tt.args...)

			require.Equal(t, 0, code, out)
			assert.Equal(t, tt.purchases, strings.Count(out, "consumer bought item"))
			assert.Equal(t, tt.goneHome, strings.Count(out, "consumer found nothing to buy, going home"))
			assert.Contains(t, out, "simulation complete")
		})
	}
}

func TestStorefront_Usage(t *testing.T) {
	out, code := runStorefront(t, "2", "three", "10")

	assert.Equal(t, 2, code)
	assert.Contains(t, out, "usage: storefront")
	assert.NotContains(t, out, "store opens")
}
