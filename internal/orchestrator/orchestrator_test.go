package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/stretchr/testify/require"
)

const testPlan = `
value: 300
accept_terms: true
cards:
  - id: 1
    method: email
    email: ola@example.no
  - id: 2
    method: physical
`

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew_MissingPlan(t *testing.T) {
	t.Parallel()

	_, err := New(Config{PlanPath: filepath.Join(t.TempDir(), "missing.yml")})
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_NotStarted(t *testing.T) {
	t.Parallel()

	o, err := New(Config{PlanPath: writePlan(t, testPlan)})
	require.NoError(t, err)
	_, err = o.Run()
	require.Error(t, err)
}

func TestRun_PlanWithoutDispatch(t *testing.T) {
	t.Parallel()

	o, err := New(Config{
		PlanPath:   writePlan(t, testPlan),
		Count:      3,
		BatchLabel: "Team Offsite",
	})
	require.NoError(t, err)
	require.True(t, o.Headless())
	require.NoError(t, o.Start())
	t.Cleanup(func() { require.NoError(t, o.Stop()) })

	require.False(t, o.Dispatcher().Recording())

	receipt, err := o.Run()
	require.NoError(t, err)
	require.Equal(t, 2, receipt.Sent)
	require.Equal(t, 600, receipt.TotalValue)
	require.Equal(t, distribution.MethodCounts{Email: 1, Physical: 1}, receipt.Counts)
	require.Regexp(t, `^team-offsite-[0-9a-f]{8}$`, receipt.Batch)
}

func TestRun_PlanRecordsDeliveries(t *testing.T) {
	t.Parallel()

	o, err := New(Config{
		PlanPath: writePlan(t, testPlan),
		Count:    2,
		Dispatch: true,
		DataDir:  t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, o.Start())
	t.Cleanup(func() { require.NoError(t, o.Stop()) })

	receipt, err := o.Run()
	require.NoError(t, err)

	deliveries, err := o.Deliveries(receipt.Batch)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
}

func TestRun_PlanBlocked(t *testing.T) {
	t.Parallel()

	o, err := New(Config{PlanPath: writePlan(t, `
count: 1
accept_terms: true
cards:
  - id: 1
    method: sms
    phone: "12"
`)})
	require.NoError(t, err)
	require.NoError(t, o.Start())
	t.Cleanup(func() { require.NoError(t, o.Stop()) })

	receipt, err := o.Run()
	require.Nil(t, receipt)
	require.ErrorIs(t, err, distribution.ErrStepBlocked)
}

func TestRun_PlanTermsRequired(t *testing.T) {
	t.Parallel()

	o, err := New(Config{PlanPath: writePlan(t, `
count: 1
all_method: physical
`)})
	require.NoError(t, err)
	require.NoError(t, o.Start())
	t.Cleanup(func() { require.NoError(t, o.Stop()) })

	_, err = o.Run()
	require.ErrorIs(t, err, distribution.ErrTermsNotAccepted)
}

func TestStop_Idempotent(t *testing.T) {
	t.Parallel()

	o, err := New(Config{Dispatch: true})
	require.NoError(t, err)
	require.NoError(t, o.Start())

	dir := o.tempDir
	require.NotEmpty(t, dir)

	require.NoError(t, o.Stop())
	require.NoError(t, o.Stop())
	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}
