package seerprep_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/featurebasedb/seerprep"
	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/ledger"
	"github.com/featurebasedb/seerprep/logger"
	"github.com/featurebasedb/seerprep/split"
	"github.com/featurebasedb/seerprep/table"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLayout = `
  input
    @ 1   PUBCSNUM  $char8.  /* Patient ID */
    @ 9   RECNUM    $char2.  /* Record number */
    @ 11  YEAR_DX   $char4.  /* Year of diagnosis */
    @ 15  AGE_DX    $char3.  /* Age at diagnosis */
    @ 18  SEX       $char1.  /* Sex */
    @ 19  REG       $char2.  /* SEER registry */
    @ 21  SRV_TIME  $char4.  /* Survival months */
    @ 25  CODPUB    $char1.  /* SEER cause of death classification */
;
`

// Patient, record, year, age, sex, registry, months, cause of death.
var testRecords = []string{
	"0000000101" + "1990" + "055" + "1" + "20" + "0005" + "1", // kept, label 0
	"0000000201" + "1985" + "060" + "2" + "20" + "0100" + "0", // before start year
	"0000000301" + "1995" + "017" + "1" + "20" + "0050" + "0", // under age
	"0000000401" + "2000" + "070" + "2" + "20" + "0003" + "0", // early other-cause death
	"0000000501" + "2001" + "045" + "2" + "20" + "0120" + "0", // kept, label 1
	"0000000601" + "2002" + "080" + "1" + "20" + "0999" + "0", // unknown survival
	"0000000702" + "2003" + "050" + "1" + "20" + "0024" + "1", // kept, label 1
	"0000000801" + "2004" + "065" + "2" + "20" + "0030" + "0", // in case list
}

const testPipeline = `
[[column]]
name = "Patient ID"
status = "remove"

[[column]]
name = "Record number"
status = "remove"

[[column]]
name = "Year of diagnosis"
status = "remove"

[[column]]
name = "Age at diagnosis"

  [[column.constraint]]
  operator = ">="
  value = 18

[[column]]
name = "Sex"
status = "categorical"

[[column]]
name = "SEER registry"

[[column]]
name = "Survival months"

[[column]]
name = "SEER cause of death classification"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(t *testing.T) *seerprep.Config {
	t.Helper()
	in := t.TempDir()
	c := seerprep.NewConfig()
	c.Specifications = writeFile(t, in, "layout.sas", testLayout)
	c.Incidences = writeFile(t, in, "RESPIR.TXT", strings.Join(testRecords, "\n")+"\n")
	c.Cases = writeFile(t, in, "cases.csv", "Patient ID,Record number\n8,1\n")
	c.Pipeline = writeFile(t, in, "pipeline.toml", testPipeline)
	c.Output = filepath.Join(t.TempDir(), "output")
	c.Task = "survival12"
	c.OneHotEncoding = true
	c.RecordLength = 25
	c.ReservedGap = 0
	c.StartYear = 1988
	c.Concurrency = 2
	return c
}

func TestPreparer_Run(t *testing.T) {
	c := testConfig(t)
	log := logger.NewBufferLogger()
	p := seerprep.NewPreparer(c, log)
	p.Now = func() time.Time { return time.Date(2026, 3, 7, 14, 5, 9, 0, time.UTC) }

	casesBefore := testutil.ToFloat64(seerprep.CounterRowsDropped.WithLabelValues(seerprep.StageCases))

	m, err := p.Run(context.Background())
	require.NoError(t, err, log.String())
	assert.Equal(t, filepath.Join(c.Output, "2026-3-7_14-5-9_experiment-0"), p.Dir)

	assert.Equal(t, 3, m.Rows)
	assert.Equal(t, 3, m.Columns)
	assert.Equal(t, 2, m.Encodings)
	assert.Equal(t, "Survived cancer for 12 months", m.Label)
	assert.Equal(t, []string{"SEER registry"}, m.Pruned)
	if diff := cmp.Diff(map[string]int{
		seerprep.StageCases:     1,
		seerprep.StageStartYear: 1,
		seerprep.StagePipeline:  1,
		seerprep.StageTarget:    2,
	}, m.RowsDropped); diff != "" {
		t.Errorf("rows dropped (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[split.Set]int{split.Train: 2, split.Valid: 0, split.Test: 1}, m.Partition)
	assert.Equal(t, []string{"data.csv", "data.parquet", "data.sqlite"}, m.Files)
	info, err := os.Stat(filepath.Join(p.Dir, "data.parquet"))
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
	assert.Len(t, m.Fingerprint, 32)
	assert.Len(t, m.PipelineDigest, 32)
	assert.Equal(t, 1.0, testutil.ToFloat64(seerprep.CounterRowsDropped.WithLabelValues(seerprep.StageCases))-casesBefore)

	csv, err := os.ReadFile(filepath.Join(p.Dir, "data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Age at diagnosis,Sex 1,Sex 2,Survived cancer for 12 months,set", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "55,1,0,0,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "45,0,1,1,"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "50,1,0,1,"), lines[3])

	buf, err := os.ReadFile(filepath.Join(p.Dir, seerprep.LedgerFile))
	require.NoError(t, err)
	l := ledger.New()
	require.NoError(t, json.Unmarshal(buf, l))
	assert.Equal(t, []ledger.Entry{{Name: "Age at diagnosis", Width: 1}, {Name: "Sex", Width: 2}}, l.Entries())

	for _, name := range []string{
		seerprep.ArgumentsFile, seerprep.PipelineFile, seerprep.SummaryFile,
		seerprep.ManifestFile, seerprep.MetricsFile,
	} {
		_, err := os.Stat(filepath.Join(p.Dir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(p.Dir, seerprep.FailureFile))
	assert.True(t, os.IsNotExist(err))

	out := log.String()
	assert.Contains(t, out, "Raw data: (8; 8) cases and attributes")
	assert.Contains(t, out, "Filtered SEER*Stat cases from ASCII: (7; 8) cases and attributes")
	assert.Contains(t, out, "Remove inputs with constant values: (3; 3) cases and attributes")

	// A second run of the same inputs sees the same data in a new directory.
	p2 := seerprep.NewPreparer(c, logger.NopLogger)
	p2.Now = p.Now
	m2, err := p2.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Output, "2026-3-7_14-5-9_experiment-1"), p2.Dir)
	assert.Equal(t, m.Fingerprint, m2.Fingerprint)
	assert.NotEqual(t, m.RunID, m2.RunID)
}

func TestPreparer_RunFailure(t *testing.T) {
	c := testConfig(t)
	// The year column is renamed, so the start-year filter cannot find it.
	layoutSrc := strings.Replace(testLayout, "Year of diagnosis", "Year of birth", 1)
	c.Specifications = writeFile(t, t.TempDir(), "layout.sas", layoutSrc)

	p := seerprep.NewPreparer(c, nil)
	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound), "got %v", err)

	buf, err := os.ReadFile(filepath.Join(p.Dir, seerprep.FailureFile))
	require.NoError(t, err)
	assert.Contains(t, string(buf), string(errors.ErrColumnNotFound))
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]func(c *seerprep.Config){
		"no incidences": func(c *seerprep.Config) { c.Incidences = "" },
		"bad task":      func(c *seerprep.Config) { c.Task = "mort7" },
		"bad format":    func(c *seerprep.Config) { c.Formats = []string{"xlsx"} },
		"bad ratios":    func(c *seerprep.Config) { c.ValidRatio, c.TestRatio = 0.5, 0.5 },
		"bad gap":       func(c *seerprep.Config) { c.ReservedGap = c.RecordLength },
		"bad year":      func(c *seerprep.Config) { c.StartYear = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := testConfig(t)
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, testConfig(t).Validate())
}

func TestFilterStartYear(t *testing.T) {
	tbl := table.New(4)
	require.NoError(t, tbl.Add(seerprep.YearOfDiagnosisColumn, []int32{1987, 1988, -1, 2010}))
	dropped, err := seerprep.FilterStartYear(tbl, 1988)
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []int32{1988, 2010}, tbl.MustColumn(seerprep.YearOfDiagnosisColumn))

	_, err = seerprep.FilterStartYear(table.New(0), 1988)
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))
}

func TestCreateRunDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "output")
	now := time.Date(2026, 10, 18, 9, 0, 30, 0, time.UTC)
	first, err := seerprep.CreateRunDir(out, now)
	require.NoError(t, err)
	second, err := seerprep.CreateRunDir(out, now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18_9-0-30_experiment-0", filepath.Base(first))
	assert.Equal(t, "2026-10-18_9-0-30_experiment-1", filepath.Base(second))
}

func TestVersionInfo(t *testing.T) {
	assert.True(t, strings.HasPrefix(seerprep.VersionInfo(), "seerprep "))
}
