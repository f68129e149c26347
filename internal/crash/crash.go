/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the CLI into a crash report on disk and a
// short message on stderr.
package crash

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "goxplot/internal/log"
	"goxplot/internal/version"
)

// exitFn and stderr are swapped out by tests.
var (
	exitFn           = os.Exit
	stderr io.Writer = os.Stderr
)

// Report describes what the process was doing when it panicked.
type Report struct {
	// Input is the script being processed, if any.
	Input string
	// Dir receives the report file; empty means os.TempDir().
	Dir string
}

// Recover captures a panic, logs it with its stack, writes a crash report
// and exits with status 1.
//
// Usage: defer crash.Recover(crash.Report{Input: path})
func Recover(rep Report) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("input", rep.Input), slog.String("stack", string(stack)))

	path, err := writeReport(rep, r, stack)
	if err != nil {
		l.Error("write crash report", slog.Any("err", err), slog.String("path", path))
		_, _ = fmt.Fprintf(stderr, "goxplot: fatal error: %v\n", r)
	} else {
		_, _ = fmt.Fprintf(stderr, "goxplot: fatal error, crash report saved to %s\n", path)
	}
	exitFn(1)
}

func writeReport(rep Report, panicVal any, stack []byte) (string, error) {
	dir := rep.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dir, err
	}
	path := filepath.Join(dir, "goxplot-crash-"+time.Now().Format("20060102-150405")+".log")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "goxplot crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	if rep.Input != "" {
		fmt.Fprintf(&buf, "Input: %s\n", rep.Input)
		if fi, err := os.Stat(rep.Input); err == nil {
			fmt.Fprintf(&buf, "InputSize: %d\n", fi.Size())
		}
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\nStack:\n%s\n", panicVal, stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
