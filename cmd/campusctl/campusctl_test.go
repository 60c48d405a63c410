package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"classify", "What", "is", "my", "CGPA?"}, "grades"},
		{[]string{"classify", "exam schedule"}, "schedule"},
		{[]string{"classify", "hello there"}, "default"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestClassifyRequiresQuery(t *testing.T) {
	_, err := run(t, "classify")
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	out, err := run(t, "explain", "when is my fee due")
	require.NoError(t, err)
	assert.Contains(t, out, "intent:  fees")
	assert.Contains(t, out, `trigger: "fee"`)

	out, err = run(t, "explain", "tell me a joke")
	require.NoError(t, err)
	assert.Contains(t, out, "intent:  default")
	assert.Contains(t, out, "fallback")
}

func TestIntentsListsRulesInOrder(t *testing.T) {
	out, err := run(t, "intents")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "1. grades"))
	assert.True(t, strings.HasPrefix(lines[5], "6. results"))
}

func TestCustomCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	catalog := `
welcome: hi
unavailable: later
default: pardon?
grades: A+
attendance: present
schedule: busy
courses: many
fees: paid
results: passed
`
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	out, err := run(t, "--catalog", path, "explain", "my grade")
	require.NoError(t, err)
	assert.Contains(t, out, "A+")

	_, err = run(t, "--catalog", filepath.Join(dir, "missing.yaml"), "intents")
	assert.Error(t, err)
}

func TestPrintRuns(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, printRuns(cmd, nil))
	assert.Equal(t, "No job runs recorded\n", out.String())

	out.Reset()
	started := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	require.NoError(t, printRuns(cmd, []model.CronJobLog{
		{ID: 2, JobName: "cleanup_old_job_logs", Status: model.CronJobFailed, StartedAt: started, Duration: 12, Message: "ignored", ErrorMsg: "db down"},
		{ID: 1, JobName: "cleanup_expired_tokens", Status: model.CronJobCompleted, StartedAt: started, Duration: 3, Message: "Removed 4 expired tokens"},
	}))
	text := out.String()
	assert.Contains(t, text, "db down")
	assert.NotContains(t, text, "ignored")
	assert.Contains(t, text, "Removed 4 expired tokens")
	assert.Contains(t, text, "2026-03-01 02:00:00")
}

type fakeCreator struct {
	existing map[string]bool
	fail     string
	created  []string
}

func (f *fakeCreator) SignUp(_ context.Context, email, _, _ string, _ model.UserRole) (*authgate.Identity, error) {
	if email == f.fail {
		return nil, errors.New("db down")
	}
	if f.existing[email] {
		return nil, authgate.ErrAlreadyRegistered
	}
	f.created = append(f.created, email)
	return &authgate.Identity{Email: email}, nil
}

func TestSeedAccountsSkipsExisting(t *testing.T) {
	accounts := demoAccounts()
	creator := &fakeCreator{existing: map[string]bool{accounts[0].Email: true}}

	results, err := seedAccounts(context.Background(), creator, accounts)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Created)
	assert.True(t, results[1].Created)
	assert.Equal(t, []string{accounts[1].Email}, creator.created)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, printSeeded(cmd, results))
	assert.Contains(t, out.String(), "exists")
	assert.Contains(t, out.String(), "created")
}

func TestSeedAccountsStopsOnError(t *testing.T) {
	accounts := demoAccounts()
	creator := &fakeCreator{fail: accounts[0].Email}

	_, err := seedAccounts(context.Background(), creator, accounts)
	assert.ErrorContains(t, err, "db down")
	assert.Empty(t, creator.created)
}

func TestDemoAccountPasswordsFromEnv(t *testing.T) {
	t.Setenv("SEED_STUDENT_PASSWORD", "s3cret!")
	accounts := demoAccounts()
	assert.Equal(t, "s3cret!", accounts[0].Password)
	assert.Equal(t, model.UserRoleStudent, accounts[0].Role)
	assert.Equal(t, model.UserRoleTeacher, accounts[1].Role)
}
