/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"goxplot/internal/xplot"
)

const script = `timeval double
title
demo
green
line 0 0 1 1
line 1 1 2 2
box 2 2
purple haze
go
`

func setup(t *testing.T) (dir, input string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("GOXPLOT_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("GOXPLOT_CACHE_PATH", filepath.Join(dir, "cache", "scenes.db"))
	t.Setenv("GOXPLOT_OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("GOXPLOT_BACKEND", "native")
	t.Setenv("GOXPLOT_FORMAT", "svg")
	t.Setenv("GOXPLOT_SHOW", "false")
	t.Setenv("GOXPLOT_LOG_LEVEL", "error")
	input = filepath.Join(dir, "demo.xpl")
	if err := os.WriteFile(input, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, input
}

func TestUsage(t *testing.T) {
	setup(t)
	cases := [][]string{
		nil,
		{"a.xpl", "b.xpl"},
		{"dump"},
		{"normalize", "a", "b"},
		{"history", "zero"},
	}
	for _, args := range cases {
		var out, errb bytes.Buffer
		if code := run(args, &out, &errb); code != exitUsage {
			t.Errorf("run(%q) = %d, want %d", args, code, exitUsage)
		}
	}
}

func TestVersion(t *testing.T) {
	var out, errb bytes.Buffer
	if code := run([]string{"--version"}, &out, &errb); code != exitOK {
		t.Fatalf("exit %d", code)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatal("empty version")
	}
}

func TestRenderWritesOutput(t *testing.T) {
	dir, input := setup(t)
	var out, errb bytes.Buffer
	if code := run([]string{input}, &out, &errb); code != exitOK {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	want := filepath.Join(dir, "out", "demo.svg")
	if got := strings.TrimSpace(out.String()); got != want {
		t.Fatalf("output path %q, want %q", got, want)
	}
	b, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte("<svg")) {
		t.Fatal("not an svg document")
	}
	if !strings.Contains(errb.String(), "demo.xpl:8: unknown command: purple haze") {
		t.Fatalf("diagnostic missing from stderr: %q", errb.String())
	}
}

func TestRenderMissingFile(t *testing.T) {
	dir, _ := setup(t)
	var out, errb bytes.Buffer
	if code := run([]string{filepath.Join(dir, "nope.xpl")}, &out, &errb); code != exitFailure {
		t.Fatalf("exit %d, want %d", code, exitFailure)
	}
	if !strings.Contains(errb.String(), "open xplot") {
		t.Fatalf("stderr %q", errb.String())
	}
}

func TestRenderMalformed(t *testing.T) {
	dir, _ := setup(t)
	bad := filepath.Join(dir, "bad.xpl")
	if err := os.WriteFile(bad, []byte("timeval double\nline 0 0 x 1\ngo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errb bytes.Buffer
	if code := run([]string{bad}, &out, &errb); code != exitFailure {
		t.Fatalf("exit %d, want %d", code, exitFailure)
	}
	if !strings.Contains(errb.String(), "bad.xpl") {
		t.Fatalf("stderr %q", errb.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "bad.svg")); !os.IsNotExist(err) {
		t.Fatal("no output expected for a malformed script")
	}
}

func TestDump(t *testing.T) {
	_, input := setup(t)
	var out, errb bytes.Buffer
	if code := run([]string{"dump", input}, &out, &errb); code != exitOK {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	var s xplot.Scene
	if err := json.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if s.Title != "demo" || len(s.Polylines) != 1 || len(s.Polylines[0].Points) != 3 {
		t.Fatalf("unexpected scene %+v", s)
	}
}

func TestNormalize(t *testing.T) {
	_, input := setup(t)
	var out, errb bytes.Buffer
	if code := run([]string{"normalize", input}, &out, &errb); code != exitOK {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	txt := out.String()
	if !strings.HasPrefix(txt, "timeval double\n") || !strings.HasSuffix(txt, "go\n") {
		t.Fatalf("normalized script %q", txt)
	}
	if strings.Contains(txt, "purple") {
		t.Fatal("unknown commands must not survive normalization")
	}
}

func TestHistoryAfterRender(t *testing.T) {
	_, input := setup(t)
	var out, errb bytes.Buffer
	for i := 0; i < 2; i++ {
		if code := run([]string{"dump", input}, &out, &errb); code != exitOK {
			t.Fatalf("exit %d: %s", code, errb.String())
		}
	}
	out.Reset()
	if code := run([]string{"history"}, &out, &errb); code != exitOK {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("history output %q", out.String())
	}
	if !strings.Contains(lines[1], input) {
		t.Fatalf("history row %q lacks the source", lines[1])
	}
}

func TestHistoryCacheDisabled(t *testing.T) {
	setup(t)
	t.Setenv("GOXPLOT_CACHE", "off")
	var out, errb bytes.Buffer
	if code := run([]string{"history"}, &out, &errb); code != exitFailure {
		t.Fatalf("exit %d, want %d", code, exitFailure)
	}
}

func TestCacheKeepsMaxEntries(t *testing.T) {
	dir, _ := setup(t)
	t.Setenv("GOXPLOT_CACHE_MAX", "2")
	var out, errb bytes.Buffer
	for i := 0; i < 3; i++ {
		p := filepath.Join(dir, "edit.xpl")
		body := script + strings.Repeat("\n", i)
		if err := os.WriteFile(p, []byte("dot "+strconv.Itoa(i)+" 0\n"+body), 0o644); err != nil {
			t.Fatal(err)
		}
		if code := run([]string{p}, &out, &errb); code != exitOK {
			t.Fatalf("exit %d: %s", code, errb.String())
		}
	}
	out.Reset()
	if code := run([]string{"history"}, &out, &errb); code != exitOK {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1+2 {
		t.Fatalf("history should keep 2 entries, got %q", out.String())
	}
}

func TestScriptNamedLikeCommand(t *testing.T) {
	dir, _ := setup(t)
	t.Chdir(dir)
	if err := os.WriteFile("version", []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errb bytes.Buffer
	if code := run([]string{"version"}, &out, &errb); code != exitOK {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	want := filepath.Join(dir, "out", "version.svg")
	if got := strings.TrimSpace(out.String()); got != want {
		t.Fatalf("output path %q, want %q", got, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatal(err)
	}
}
