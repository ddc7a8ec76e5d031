package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Mutation("patients", "add")
	m.Mutation("patients", "add")
	m.Mutation("doctors", "remove")
	m.Session("login", "ok")
	m.Session("login", "rejected")
	m.Denied("delete_patient")
	m.SetSize("patients", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("patients", "add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("doctors", "remove")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("login", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.denials.WithLabelValues("delete_patient")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.records.WithLabelValues("patients")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Mutation("patients", "add")
	m.Session("logout", "ok")
	m.Denied("x")
	m.SetSize("patients", 1)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.Mutation("appointments", "add")

	path := filepath.Join(t.TempDir(), "clinicdesk.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `clinicdesk_record_mutations_total{collection="appointments",op="add"} 1`)
}
