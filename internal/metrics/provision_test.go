package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveOperationAndTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	ObserveOperation("create_admin_user", nil, 120*time.Millisecond)
	ObserveOperation("create_admin_user", errors.New("boom"), 80*time.Millisecond)

	path := filepath.Join(t.TempDir(), "provisioner.prom")
	require.NoError(t, WriteTextfile(path, reg))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	require.Contains(t, out, `provisioner_operations_total{op="create_admin_user",result="success"}`)
	require.Contains(t, out, `provisioner_operations_total{op="create_admin_user",result="error"}`)
	require.Contains(t, out, `provisioner_operation_duration_seconds_count{op="create_admin_user"}`)
	require.Contains(t, out, `provisioner_last_success_timestamp_seconds{op="create_admin_user"}`)
}

func TestWriteTextfile_EmptyPathIsNoop(t *testing.T) {
	require.NoError(t, WriteTextfile("", prometheus.NewRegistry()))
}
