// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd_test

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"time"

	"github.com/featurebasedb/seerprep/cmd"
	"github.com/spf13/cobra"
)

func failErr(t *testing.T, err error, context ...string) {
	ctx := strings.Join(context, "; ")
	if err != nil {
		t.Fatal(ctx, ": ", err)
	}
}

// tExec executes the given `cmd`, which will be writing its output to `w`, and
// can be read from `out`. It will fail the test if the command does not return
// within 1 second. Useful for testing help messages and such.
func tExec(t *testing.T, cmd *cobra.Command, out io.Reader, w io.WriteCloser) (output []byte) {
	done := make(chan struct{})
	go func() {
		var err error
		output, err = ioutil.ReadAll(out)
		if err != nil {
			t.Fatal(err)
		}
		close(done)
	}()
	err := cmd.Execute()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing cmd's stdout: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second * 1):
		t.Fatal("Test failed due to command execution timeout")
	}
	return output
}

// ExecNewRootCommand executes the root command with the given arguments
// and returns it's output. It will fail if the command does not complete within
// 1 second.
func ExecNewRootCommand(t *testing.T, args ...string) string {
	out, w := io.Pipe()
	rc := cmd.NewRootCommand(os.Stdin, w, w)
	rc.SetArgs(args)
	output := tExec(t, rc, out, w)
	return string(output)
}

func TestRootCommand(t *testing.T) {
	outStr := ExecNewRootCommand(t, "--help")
	if !strings.Contains(outStr, "Usage:") ||
		!strings.Contains(outStr, "Available Commands:") ||
		!strings.Contains(outStr, "--help") {
		t.Fatalf("Expected standard usage message from RootCommand, but got: %s", outStr)
	}
	for _, sub := range []string{"prepare", "layout", "describe", "generate-config"} {
		if !strings.Contains(outStr, sub) {
			t.Errorf("usage does not list %q", sub)
		}
	}
}

func TestGenerateConfigCommand(t *testing.T) {
	outStr := ExecNewRootCommand(t, "generate-config")
	for _, key := range []string{`task = "survival60"`, "record-length = 362", `pipeline = "seer"`} {
		if !strings.Contains(outStr, key) {
			t.Fatalf("generated config lacks %q:\n%s", key, outStr)
		}
	}
}

const layoutSrc = `
    @ 1   PUBCSNUM  $char3.  /* Patient ID */
    @ 4   RECNUM    $char2.  /* Record number */
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	failErr(t, os.WriteFile(path, []byte(content), 0644), "writing", name)
	return path
}

func TestLayoutCommand_ConfigFile(t *testing.T) {
	spec := writeTemp(t, "layout.sas", layoutSrc)
	conf := writeTemp(t, "seerprep.toml", fmt.Sprintf("specifications = %q\nrecord-length = 5\nreserved-gap = 0\n", spec))

	outStr := ExecNewRootCommand(t, "layout", "--config", conf)
	if !strings.Contains(outStr, "Record number") {
		t.Fatalf("unexpected layout output: %s", outStr)
	}
}

func TestLayoutCommand_Env(t *testing.T) {
	spec := writeTemp(t, "layout.sas", layoutSrc)
	t.Setenv("SEERPREP_RECORD_LENGTH", "5")
	t.Setenv("SEERPREP_RESERVED_GAP", "0")

	outStr := ExecNewRootCommand(t, "layout", "--specifications", spec)
	if !strings.Contains(outStr, "PUBCSNUM") {
		t.Fatalf("unexpected layout output: %s", outStr)
	}
}

func TestLayoutCommand_Errors(t *testing.T) {
	spec := writeTemp(t, "layout.sas", layoutSrc)
	tests := map[string][]string{
		// The default SEER record length does not match the two fields.
		"width mismatch": {"layout", "--specifications", spec},
		"unknown option": {"layout", "--config", writeTemp(t, "bad.toml", "colour = \"blue\"\n")},
		"missing config": {"layout", "--config", filepath.Join(t.TempDir(), "none.toml")},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			rc := cmd.NewRootCommand(os.Stdin, io.Discard, io.Discard)
			rc.SetArgs(args)
			if err := rc.Execute(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
