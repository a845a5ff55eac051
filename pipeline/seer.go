// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	_ "embed"
)

// SEERName is the name under which the built-in SEER pipeline is selected.
const SEERName = "seer"

//go:embed seer.toml
var seerDefinition []byte

// SEER returns the built-in treatment of the SEER research fields.
func SEER() []Entry {
	entries, err := Parse(seerDefinition)
	if err != nil {
		panic("pipeline: built-in SEER definition: " + err.Error())
	}
	return entries
}

// Lookup resolves a pipeline by name: the empty name and SEERName select
// the built-in pipeline, anything else is read as a definition file.
func Lookup(name string) ([]Entry, error) {
	if name == "" || name == SEERName {
		return SEER(), nil
	}
	return Load(name)
}
