// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package seerprep

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/featurebasedb/seerprep/errors"
)

// maxRunDirs bounds the search for a free run directory name.
const maxRunDirs = 10000

// CreateRunDir creates a new directory under output named after t, e.g.
// 2026-3-7_14-5-9_experiment-0. The suffix is the lowest index not already
// taken; os.Mkdir failing with an existing directory moves on to the next
// index, so concurrent runs never share a directory.
func CreateRunDir(output string, t time.Time) (string, error) {
	if err := os.MkdirAll(output, 0o755); err != nil {
		return "", errors.Wrap(err, "creating output directory")
	}
	base := fmt.Sprintf("%d-%d-%d_%d-%d-%d_experiment",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	for i := 0; i < maxRunDirs; i++ {
		dir := filepath.Join(output, fmt.Sprintf("%s-%d", base, i))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", errors.Wrap(err, "creating run directory")
		}
	}
	return "", errors.Errorf("no free run directory for %s in %s", base, output)
}
