// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/featurebasedb/seerprep"
	"github.com/featurebasedb/seerprep/ctl"
	"github.com/featurebasedb/seerprep/describe"
	seerrors "github.com/featurebasedb/seerprep/errors"
	"github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutSrc = `
    @ 1   PUBCSNUM  $char3.  /* Patient ID */
    @ 4   RECNUM    $char1.  /* Record number */
    @ 5   AGE_DX    $char3.  /* Age at diagnosis */
    @ 8   SRV_TIME  $char4.  /* Survival months */
    @ 12  CODPUB    $char1.  /* SEER cause of death classification */
`

var records = []string{
	"001" + "1" + "055" + "0005" + "1",
	"002" + "1" + "060" + "0030" + "0",
	"003" + "1" + "070" + "0100" + "1",
	"004" + "2" + "   " + "0040" + "1",
}

type fixture struct {
	layout, incidences string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		layout:     filepath.Join(dir, "layout.sas"),
		incidences: filepath.Join(dir, "DATA.TXT"),
	}
	require.NoError(t, os.WriteFile(f.layout, []byte(layoutSrc), 0644))
	require.NoError(t, os.WriteFile(f.incidences, []byte(strings.Join(records, "\n")+"\n"), 0644))
	return f
}

func TestLayoutCommand_Run(t *testing.T) {
	f := newFixture(t)
	var out, errOut bytes.Buffer
	cm := ctl.NewLayoutCommand(nil, &out, &errOut)
	cm.Specifications = f.layout
	cm.RecordLength, cm.ReservedGap = 12, 0
	require.NoError(t, cm.Run(context.Background()))
	assert.Contains(t, out.String(), "Age at diagnosis")
	assert.Contains(t, out.String(), "SRV_TIME")
	assert.Contains(t, out.String(), "12")

	cm.RecordLength = 20
	assert.Error(t, cm.Run(context.Background()))

	cm.Specifications = ""
	err := cm.Run(context.Background())
	assert.True(t, errors.Is(err, ctl.UsageError))
	assert.True(t, seerrors.Is(err, seerrors.ErrUsage), "got %v", err)
}

func TestDescribeCommand_Run(t *testing.T) {
	f := newFixture(t)
	var out, errOut bytes.Buffer
	cm := ctl.NewDescribeCommand(nil, &out, &errOut)
	cm.Specifications, cm.Incidences = f.layout, f.incidences
	cm.RecordLength, cm.ReservedGap = 12, 0
	cm.JSON = true
	require.NoError(t, cm.Run(context.Background()))

	var summaries []describe.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summaries))
	require.Len(t, summaries, 5)
	age := summaries[2]
	assert.Equal(t, "Age at diagnosis", age.Column)
	assert.Equal(t, 1, age.Empty)
	assert.Equal(t, 4, age.Distinct)

	out.Reset()
	cm.JSON = false
	cm.Heatmap = filepath.Join(t.TempDir(), "raw.png")
	require.NoError(t, cm.Run(context.Background()))
	assert.Contains(t, out.String(), "Survival months")
	assert.Contains(t, out.String(), "4 cases")
	_, err := os.Stat(cm.Heatmap)
	assert.NoError(t, err)

	cm.Incidences = ""
	assert.True(t, errors.Is(cm.Run(context.Background()), ctl.UsageError))
}

func TestPrepareCommand_Run(t *testing.T) {
	f := newFixture(t)
	pipelinePath := filepath.Join(t.TempDir(), "pipeline.toml")
	require.NoError(t, os.WriteFile(pipelinePath, []byte(`
[[column]]
name = "Patient ID"
status = "remove"

[[column]]
name = "Record number"
status = "remove"

[[column]]
name = "Age at diagnosis"

[[column]]
name = "Survival months"

[[column]]
name = "SEER cause of death classification"
`), 0644))

	var out, errOut bytes.Buffer
	cm := ctl.NewPrepareCommand(nil, &out, &errOut)
	cm.Config.Specifications, cm.Config.Incidences = f.layout, f.incidences
	cm.Config.RecordLength, cm.Config.ReservedGap = 12, 0
	cm.Config.Pipeline = pipelinePath
	cm.Config.Output = t.TempDir()
	cm.Config.Task = "mort60"
	cm.Config.Formats = []string{"csv"}
	require.NoError(t, cm.Run(context.Background()))

	require.NotNil(t, cm.Manifest)
	assert.Equal(t, cm.Dir+"\n", out.String())
	// Mortality within 60 months keeps the cancer deaths at 5 and 40 months.
	assert.Equal(t, 2, cm.Manifest.Rows)
	assert.Equal(t, "Survival months", cm.Manifest.Label)
	assert.Equal(t, []string{"data.csv"}, cm.Manifest.Files)
	assert.Contains(t, errOut.String(), "Remove inputs with constant values")

	cm = ctl.NewPrepareCommand(nil, &out, &errOut)
	assert.True(t, errors.Is(cm.Run(context.Background()), ctl.UsageError))
}

func TestGenerateConfigCommand_Run(t *testing.T) {
	var out bytes.Buffer
	cm := ctl.NewGenerateConfigCommand(nil, &out, &out)
	require.NoError(t, cm.Run(context.Background()))

	conf := &seerprep.Config{}
	require.NoError(t, toml.Unmarshal(out.Bytes(), conf))
	assert.Equal(t, seerprep.NewConfig(), conf)
}
