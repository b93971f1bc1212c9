package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-lifeexp-report/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	spec := model.RunSpec{DataPath: "data/data.csv", OutputDir: "output", Workers: 2}
	require.NoError(t, s.CreateRun(ctx, "run-1", spec))

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", run.Status)
	assert.Equal(t, "data/data.csv", run.DataPath)
	assert.Contains(t, run.Spec, `"workers":2`)

	require.NoError(t, s.UpdateRunStatus(ctx, "run-1", "completed", 42))
	run, err = s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	assert.Equal(t, 42, run.RecordCount)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}

func TestUnknownRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.UpdateRunStatus(ctx, "missing", "failed", 0), ErrRunNotFound)
}

func TestSaveRunError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateRun(ctx, "run-1", model.RunSpec{}))

	require.NoError(t, s.SaveRunError(ctx, "run-1", nil))
	require.NoError(t, s.SaveRunError(ctx, "run-1", errors.New("cannot read data.csv")))

	messages, err := s.GetRunErrors(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cannot read data.csv"}, messages)
}

func TestSaveReportRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	results := []model.AggregateResult{
		{
			Report: model.ReportLifeByYear,
			Name:   "Average Life Expectancy by Year",
			Rows: []model.AggregateRow{
				{Keys: []string{"2000"}, Value: model.Float(77.5), Count: 2},
				{Keys: []string{"2001"}, Value: nil, Count: 1},
			},
		},
		{
			Report: model.ReportDeathByYearRace,
			Name:   "Death Rate by Year and Race",
			Rows: []model.AggregateRow{
				{Keys: []string{"2000", "White"}, Value: model.Float(800), Count: 1},
			},
		},
	}

	n, err := s.SaveReportRows(ctx, "run-1", results)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := s.GetReportRows(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Report)
	assert.Equal(t, "2000", rows[0].Key1)
	require.NotNil(t, rows[0].Value)
	assert.InDelta(t, 77.5, *rows[0].Value, 1e-9)

	assert.Equal(t, 1, rows[1].Position)
	assert.Nil(t, rows[1].Value)

	assert.Equal(t, 4, rows[2].Report)
	assert.Equal(t, "White", rows[2].Key2)
	assert.Equal(t, 1, rows[2].RecordCount)

	other, err := s.GetReportRows(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
