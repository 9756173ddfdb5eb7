package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// WriteScript renders the command sequence as an executable bash script.
func WriteScript(path string, cmds []Command) error {
	var sb strings.Builder
	sb.WriteString("#!/bin/bash\n")
	for _, c := range cmds {
		sb.WriteString(c.Cmd)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0774); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	// WriteFile only applies the mode on create; an existing script from a
	// previous run keeps its bits otherwise.
	if err := os.Chmod(path, 0774); err != nil {
		return errors.Wrapf(err, "failed to chmod %s", path)
	}
	return nil
}
