package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray .env or
// studyplan.yaml is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := inTempDir(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".studyplan", "studyplan.db"), cfg.DB.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 0, cfg.Behind.MaxUnlearnedModules)

	policy := cfg.BucketPolicy()
	assert.Equal(t, domain.BucketSessionLongue, policy.ByTaskType[domain.TaskLearn])
	assert.Equal(t, domain.BucketSessionCourte, policy.ByTaskType[domain.TaskReview])
}

func TestLoad_FileThenEnvThenFlags(t *testing.T) {
	dir := inTempDir(t)
	yaml := []byte("behind:\n  late_tolerance_days: 2\n  max_unlearned_modules: 1\ncache:\n  ttl: 5s\nbuckets:\n  review: sessionCourteSupplementaire\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studyplan.yaml"), yaml, 0o600))
	t.Setenv("STUDYPLAN_BEHIND_LATE_TOLERANCE_DAYS", "4")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "", "")
	fs.String("course", "", "")
	fs.String("log-level", "", "")
	require.NoError(t, fs.Parse([]string{"--db", "/tmp/other.db"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Behind.LateToleranceDays, "env beats file")
	assert.Equal(t, 1, cfg.Behind.MaxUnlearnedModules)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "/tmp/other.db", cfg.DB.Path, "set flag beats default")
	assert.Equal(t, "warn", cfg.Log.Level, "unset flag keeps default")
	assert.Equal(t, domain.BucketSessionCourteSupp, cfg.BucketPolicy().ByTaskType[domain.TaskReview])

	bp := cfg.BehindPolicy()
	assert.Equal(t, 4, bp.LateToleranceDays)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDYPLAN_COURSE=cardio\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STUDYPLAN_COURSE") })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "cardio", cfg.Course)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	dir := inTempDir(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownBucket(t *testing.T) {
	inTempDir(t)
	t.Setenv("STUDYPLAN_BUCKETS_LEARN", "sessionMoyenne")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buckets.LEARN")
}

func TestLoad_RejectsNegativeTolerance(t *testing.T) {
	inTempDir(t)
	t.Setenv("STUDYPLAN_BEHIND_LATE_TOLERANCE_DAYS", "-1")

	_, err := Load("", nil)
	assert.Error(t, err)
}
