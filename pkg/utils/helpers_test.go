package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "xlsx"}, SplitList(" CSV, json,,xlsx "))
	assert.Nil(t, SplitList(""))
}

func TestParseNullableFloat(t *testing.T) {
	v, err := ParseNullableFloat(" 75.5 ")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 75.5, *v)

	v, err = ParseNullableFloat("   ")
	require.NoError(t, err)
	assert.Nil(t, v)

	for _, bad := range []string{"n/a", "NaN", "Inf", "-infinity"} {
		_, err = ParseNullableFloat(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatValue(t *testing.T) {
	v := 77.5
	assert.Equal(t, "77.5", FormatValue(&v))
	assert.Equal(t, "null", FormatValue(nil))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "death_rate_by_year_and_race", Slugify("Death Rate by Year and Race"))
	assert.Equal(t, "average_life_expectancy_years", Slugify("Average Life Expectancy (Years)"))
	assert.Equal(t, "chart", Slugify("!!!"))
}

func TestOutputManager(t *testing.T) {
	base := t.TempDir()
	om := NewOutputManager(base)

	path, err := om.GetOutputFilePath("run-1", "../reports.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "run-1", "reports.csv"), path)
	assert.DirExists(t, filepath.Join(base, "run-1"))

	assert.Equal(t, "csv", om.GetFileType(path))
	assert.Equal(t, "excel", om.GetFileType("reports.xlsx"))
	assert.Equal(t, "image", om.GetFileType("chart.png"))
	assert.Equal(t, "unknown", om.GetFileType("notes"))

	require.NoError(t, os.WriteFile(path, []byte("report\n"), 0644))
	size, err := om.GetFileSize(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)

	_, err = om.GetFileSize(filepath.Join(base, "run-1", "missing.csv"))
	assert.Error(t, err)
}
