package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI against the SQLite database at db.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--backend", "sqlite", "--db", db}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func testDB(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"CLINICDESK_BACKEND", "CLINICDESK_DB", "CLINICDESK_POSTGRES_DSN", "CLINICDESK_LOG_LEVEL", "CLINICDESK_METRICS_FILE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return filepath.Join(t.TempDir(), "desk.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "clinicdesk", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"login"}, {"signup"}, {"logout"}, {"whoami"}, {"dashboard"}, {"departments"},
		{"patients", "list"}, {"patients", "add"}, {"patients", "edit"}, {"patients", "delete"},
		{"doctors", "list"}, {"doctors", "add"}, {"doctors", "edit"}, {"doctors", "delete"},
		{"appointments", "list"}, {"appointments", "book"}, {"appointments", "edit"}, {"appointments", "delete"},
		{"scenario"},
	}

	for _, path := range commands {
		t.Run(filepath.Join(path...), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"backend", "db", "dsn", "metrics-file"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, name)
	}
}

func TestInvalidFormat(t *testing.T) {
	db := testDB(t)
	_, err := execute(t, db, "--format", "xml", "whoami")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidBackend(t *testing.T) {
	testDB(t)
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--backend", "floppy", "whoami"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown backend "floppy"`)
}

func TestSessionFlow(t *testing.T) {
	db := testDB(t)

	out, err := execute(t, db, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in.\n", out)

	out, err = execute(t, db, "dashboard")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Equal(t, "Error [E_LOGIN_REQUIRED]: Please log in to continue.\n", out)

	out, err = execute(t, db, "login", "-u", "staff", "-p", "wrong")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E_LOGIN_FAILED]: Invalid username or password.\n", out)

	out, err = execute(t, db, "login", "-u", "staff", "-p", "staff")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as staff (Staff).\n", out)

	out, err = execute(t, db, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "staff (Staff)\n", out)

	out, err = execute(t, db, "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "Welcome, staff (Staff)\nPatients: 2  Doctors: 2  Appointments: 2\nStaff: View and book appointments.\n", out)

	out, err = execute(t, db, "doctors", "delete", "1")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E_DENIED]: Only admins can delete doctors.\n", out)

	out, err = execute(t, db, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)

	_, err = execute(t, db, "logout")
	require.NoError(t, err)
}

func TestSignup(t *testing.T) {
	db := testDB(t)

	out, err := execute(t, db, "signup", "-u", "nina", "-p", "pw", "--role", "admin")
	require.NoError(t, err)
	assert.Equal(t, "Signed up as nina (Admin).\n", out)

	out, err = execute(t, db, "signup", "-u", "nina", "-p", "pw", "--role", "janitor")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E_INVALID")
}

func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status  string          `json:"status"`
		Data    json.RawMessage `json:"data"`
		TraceID string          `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	assert.NotEmpty(t, resp.TraceID)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestPatients_JSON(t *testing.T) {
	db := testDB(t)
	_, err := execute(t, db, "login", "-u", "admin", "-p", "admin")
	require.NoError(t, err)

	out, err := execute(t, db, "--format", "json", "patients", "add",
		"--name", "Sam Lee", "--age", "52", "--department", "Orthopedics", "--contact", "555-0199")
	require.NoError(t, err)
	var added struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	decodeData(t, out, &added)
	assert.Equal(t, "Sam Lee", added.Name)
	assert.Equal(t, 52, added.Age)
	assert.Positive(t, added.ID)

	out, err = execute(t, db, "--format", "json", "patients", "edit", "1", "--age", "31")
	require.NoError(t, err)
	var edited struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	decodeData(t, out, &edited)
	assert.Equal(t, "John Doe", edited.Name)
	assert.Equal(t, 31, edited.Age)

	out, err = execute(t, db, "--format", "json", "patients", "list")
	require.NoError(t, err)
	var list []map[string]any
	decodeData(t, out, &list)
	assert.Len(t, list, 3)

	out, err = execute(t, db, "--format", "json", "patients", "add", "--name", "Incomplete")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_REQUIRED", resp.Error.Code)
	assert.Equal(t, "All fields are required.", resp.Error.Message)
}

func TestAppointments_BookForNewPatient(t *testing.T) {
	db := testDB(t)
	_, err := execute(t, db, "login", "-u", "staff", "-p", "staff")
	require.NoError(t, err)

	out, err := execute(t, db, "appointments", "book", "--doctor", "1", "--date", "2023-11-01", "--time", "09:00",
		"--new-patient-name", "New P", "--new-patient-age", "40",
		"--new-patient-department", "Pediatrics", "--new-patient-contact", "555")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered patient New P (")
	assert.Contains(t, out, "Booked appointment ")

	out, err = execute(t, db, "appointments", "book", "--doctor", "1", "--date", "2023-11-01", "--time", "09:00",
		"--new-patient-name", "Half")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E_REQUIRED]: Please fill all new patient details.\n", out)

	out, err = execute(t, db, "appointments", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "New P")
	assert.Contains(t, out, "Dr. Alice Johnson")

	out, err = execute(t, db, "appointments", "delete", "1")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E_DENIED]: Only admins can delete appointments.\n", out)
}

func TestAppointments_EditKeepsStatus(t *testing.T) {
	db := testDB(t)
	_, err := execute(t, db, "login", "-u", "staff", "-p", "staff")
	require.NoError(t, err)

	_, err = execute(t, db, "appointments", "edit", "2",
		"--patient", "2", "--doctor", "2", "--date", "2023-10-05", "--time", "2:00 PM")
	require.NoError(t, err)

	out, err := execute(t, db, "--format", "json", "appointments", "list")
	require.NoError(t, err)
	var rows []struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status string `json:"status"`
	}
	decodeData(t, out, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[1].ID)
	assert.Equal(t, "2023-10-05", rows[1].Date)
	assert.Equal(t, "Completed", rows[1].Status)
}

func TestDepartments(t *testing.T) {
	db := testDB(t)
	out, err := execute(t, db, "departments")
	require.NoError(t, err)
	assert.Equal(t, "Cardiology\nNeurology\nPediatrics\nOrthopedics\n", out)
}

func TestMetricsFile(t *testing.T) {
	db := testDB(t)
	path := filepath.Join(t.TempDir(), "clinicdesk.prom")

	_, err := execute(t, db, "--metrics-file", path, "login", "-u", "admin", "-p", "admin")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `clinicdesk_session_events_total{event="login",outcome="ok"} 1`)
}

func TestScenarioCommand(t *testing.T) {
	testDB(t)
	dir := filepath.Join("..", "scenario", "testdata", "scenarios")

	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cmd := NewRootCommand()
			buf := &bytes.Buffer{}
			cmd.SetOut(buf)
			cmd.SetErr(io.Discard)
			cmd.SetArgs([]string{"--backend", backend, "scenario", dir})
			require.NoError(t, cmd.Execute())
			assert.Contains(t, buf.String(), "PASS staff_booking")
			assert.Contains(t, buf.String(), "2 passed, 0 failed, 2 total")
		})
	}
}

func TestScenarioCommand_Failure(t *testing.T) {
	testDB(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: bad
steps:
  - op: dashboard
    expect: {outcome: ok}
`), 0o644))

	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"scenario", path})
	err := cmd.Execute()
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "FAIL bad")
	assert.Contains(t, buf.String(), `outcome "rejected", want "ok"`)
}
