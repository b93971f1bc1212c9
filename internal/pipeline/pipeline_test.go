package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-lifeexp-report/internal/model"
	"go-lifeexp-report/pkg/utils"
)

// MockRunStore is a testify mock of RunStore
type MockRunStore struct {
	MockReportStore
}

func (m *MockRunStore) CreateRun(ctx context.Context, runID string, spec model.RunSpec) error {
	return m.Called(ctx, runID, spec).Error(0)
}

func (m *MockRunStore) UpdateRunStatus(ctx context.Context, runID, status string, recordCount int) error {
	return m.Called(ctx, runID, status, recordCount).Error(0)
}

func (m *MockRunStore) SaveRunError(ctx context.Context, runID string, err error) error {
	return m.Called(ctx, runID, err).Error(0)
}

// recordingPresenter keeps every chart it is shown
type recordingPresenter struct {
	mu     sync.Mutex
	charts []*model.Chart
}

func (p *recordingPresenter) Show(chart *model.Chart) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.charts = append(p.charts, chart)
}

func writeDataset(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+strings.Join(rows, "\n")+"\n"), 0644))
	return path
}

func sampleDataset(t *testing.T) string {
	return writeDataset(t,
		"2000,White,Male,75.0,500.0",
		"2000,White,Female,80.0,400.0",
		"2001,White,Male,76.0,490.0",
	)
}

func TestRunPrintsReportsAndShowsCharts(t *testing.T) {
	var out bytes.Buffer
	presenter := &recordingPresenter{}
	spec := model.RunSpec{DataPath: sampleDataset(t), PreviewRows: 20, Charts: true}

	summary, err := Run(context.Background(), "run-1", spec, Deps{Presenter: presenter, Out: &out})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RecordCount)
	require.Len(t, summary.Results, 5)
	assert.Len(t, summary.Charts, 4)
	assert.Len(t, presenter.charts, 4)
	assert.Equal(t, "completed", summary.Metrics.Status)
	assert.Equal(t, int64(5), summary.Metrics.ReportCount)

	text := out.String()
	prev := -1
	for _, r := range Reports() {
		pos := strings.Index(text, r.Name)
		require.GreaterOrEqual(t, pos, 0, r.Name)
		assert.Greater(t, pos, prev, "reports printed in order")
		prev = pos
	}
	assert.Less(t, strings.Index(text, "Dataset"), strings.Index(text, Reports()[0].Name), "preview comes first")
}

func TestRunWithoutChartsStillBuildsThem(t *testing.T) {
	presenter := &recordingPresenter{}
	spec := model.RunSpec{DataPath: sampleDataset(t), Charts: false}

	summary, err := Run(context.Background(), "run-1", spec, Deps{Presenter: presenter, Out: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Len(t, summary.Charts, 4)
	assert.Empty(t, presenter.charts)
}

func TestRunWorkersGiveSameResults(t *testing.T) {
	path := writeDataset(t,
		"2003,Hispanic,Male,79,520",
		"1999,White,Female,80,410",
		"2003,Black,Female,,690",
		"2001,Asian,Male,82,300",
		"1999,Black,Male,70,1100",
	)

	var seqOut, parOut bytes.Buffer
	seq, err := Run(context.Background(), "seq", model.RunSpec{DataPath: path, Workers: 1}, Deps{Out: &seqOut})
	require.NoError(t, err)
	par, err := Run(context.Background(), "par", model.RunSpec{DataPath: path, Workers: 4}, Deps{Out: &parOut})
	require.NoError(t, err)

	assert.Equal(t, seq.Results, par.Results)
	assert.Equal(t, seqOut.String(), parOut.String())
}

func TestRunEmptyDataset(t *testing.T) {
	presenter := &recordingPresenter{}
	spec := model.RunSpec{DataPath: writeDataset(t), Charts: true}

	summary, err := Run(context.Background(), "run-1", spec, Deps{Presenter: presenter, Out: &bytes.Buffer{}})
	require.NoError(t, err)

	for _, res := range summary.Results {
		assert.Empty(t, res.Rows)
	}
	require.Len(t, presenter.charts, 4)
	for _, c := range presenter.charts {
		assert.Empty(t, c.Series)
	}
}

func TestRunPersistsAndExports(t *testing.T) {
	st := new(MockRunStore)
	st.On("CreateRun", mock.Anything, "run-1", mock.AnythingOfType("model.RunSpec")).Return(nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", "running", 0).Return(nil)
	st.On("SaveReportRows", mock.Anything, "run-1", mock.Anything).Return(8, nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", "completed", 3).Return(nil)

	output := utils.NewOutputManager(t.TempDir())
	spec := model.RunSpec{
		DataPath: sampleDataset(t),
		Export:   model.Export{Formats: []string{"csv", "xlsx"}, DB: true},
	}

	summary, err := Run(context.Background(), "run-1", spec, Deps{Store: st, Output: output, Out: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(output.BaseOutputDir, "run-1"), summary.OutputDir)
	require.Len(t, summary.Exports, 3)
	for _, e := range summary.Exports {
		assert.True(t, e.Success, e.Type)
	}
	assert.FileExists(t, filepath.Join(summary.OutputDir, CSVFileName))
	assert.FileExists(t, filepath.Join(summary.OutputDir, XLSXFileName))
	st.AssertExpectations(t)
	st.AssertNotCalled(t, "SaveRunError", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSchemaMismatchMarksRunFailed(t *testing.T) {
	st := new(MockRunStore)
	st.On("CreateRun", mock.Anything, "run-1", mock.Anything).Return(nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", "running", 0).Return(nil)
	st.On("SaveRunError", mock.Anything, "run-1", mock.Anything).Return(nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", "failed", 0).Return(nil)

	presenter := &recordingPresenter{}
	var out bytes.Buffer
	spec := model.RunSpec{DataPath: writeDataset(t, "2000,White,Male,75.0,oops"), Charts: true}

	summary, err := Run(context.Background(), "run-1", spec, Deps{Store: st, Presenter: presenter, Out: &out})

	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "failed", summary.Metrics.Status)
	assert.Equal(t, "schema_mismatch", summary.Metrics.Errors[0].ErrorType)
	assert.Empty(t, out.String(), "no report runs")
	assert.Empty(t, presenter.charts)
	st.AssertExpectations(t)
	st.AssertNotCalled(t, "SaveReportRows", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunFailedLoadLeavesNoOutputDir(t *testing.T) {
	output := utils.NewOutputManager(t.TempDir())
	spec := model.RunSpec{
		DataPath: writeDataset(t, "2000,White,Male,75.0,oops"),
		Export:   model.Export{Formats: []string{"csv"}},
	}

	summary, err := Run(context.Background(), "run-1", spec, Deps{Output: output, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Empty(t, summary.OutputDir)
	assert.NoDirExists(t, filepath.Join(output.BaseOutputDir, "run-1"))
}

func TestRunMissingFile(t *testing.T) {
	spec := model.RunSpec{DataPath: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := Run(context.Background(), "run-1", spec, Deps{Out: &bytes.Buffer{}})

	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
}

func TestRunUnknownTransformation(t *testing.T) {
	spec := model.RunSpec{DataPath: sampleDataset(t), Transformations: []string{"shout"}}
	summary, err := Run(context.Background(), "run-1", spec, Deps{Out: &bytes.Buffer{}})
	assert.EqualError(t, err, "unknown transformation: shout")
	assert.Nil(t, summary.Results)
}

func TestRunExportFailureFailsRun(t *testing.T) {
	st := new(MockRunStore)
	st.On("CreateRun", mock.Anything, "run-1", mock.Anything).Return(nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", "running", 0).Return(nil)
	st.On("SaveReportRows", mock.Anything, "run-1", mock.Anything).Return(0, errors.New("disk full"))
	st.On("SaveRunError", mock.Anything, "run-1", mock.Anything).Return(nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", "failed", 3).Return(nil)

	spec := model.RunSpec{DataPath: sampleDataset(t), Export: model.Export{DB: true}}
	_, err := Run(context.Background(), "run-1", spec, Deps{Store: st, Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "disk full")
	st.AssertExpectations(t)
}

func TestRunCreateRunFailure(t *testing.T) {
	st := new(MockRunStore)
	st.On("CreateRun", mock.Anything, "run-1", mock.Anything).Return(errors.New("no such table: runs"))

	_, err := Run(context.Background(), "run-1", model.RunSpec{DataPath: sampleDataset(t)}, Deps{Store: st, Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "create run")
	st.AssertNotCalled(t, "UpdateRunStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestComputeReportsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ComputeReports(ctx, sampleTable(), Reports(), 1)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = ComputeReports(ctx, sampleTable(), Reports(), 3)
	assert.ErrorIs(t, err, context.Canceled)
}
