package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/tracking"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	v := viper.New()
	v.Set("LOG_LEVEL", "error")
	cmd := newRootCmd(v)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTrackCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "track", "1002", "--provider", "orders", "--json")
	require.NoError(t, err)

	var report tracking.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "1002", report.OrderID)
	assert.Equal(t, tracking.StageShipping, report.Stage)
	assert.Equal(t, "Order Shipped", report.Label)
	assert.Equal(t, 75, report.Progress)
}

func TestTrackCommand_Text(t *testing.T) {
	out, err := runCLI(t, "track", "1001", "--provider", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "Order #1001")
	assert.Contains(t, out, "Order Delivered (100%)")
	assert.Contains(t, out, "Estimated Delivery: Delivered")
	assert.Contains(t, out, "[x] Confirmed")
	assert.Contains(t, out, "[>] Delivered")
}

func TestTrackCommand_RandomProviderAlwaysReportsAStage(t *testing.T) {
	for i := 0; i < 20; i++ {
		out, err := runCLI(t, "track", "12345678", "--json")
		require.NoError(t, err)
		var report tracking.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.True(t, report.Stage.Valid())
	}
}

func TestTrackCommand_Errors(t *testing.T) {
	_, err := runCLI(t, "track", "1005", "--provider", "orders")
	assert.ErrorContains(t, err, "cancelled")

	_, err = runCLI(t, "track", "1", "--provider", "carrier-pigeon")
	assert.ErrorContains(t, err, "TRACKING_PROVIDER")

	_, err = runCLI(t, "track")
	assert.Error(t, err)
}
