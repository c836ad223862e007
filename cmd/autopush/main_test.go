package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bep/helpers/envhelpers"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestScripts(t *testing.T) {
	params := commonTestScriptsParam
	params.Dir = filepath.Join("testdata", "scripts")
	// params.TestWork = true
	testscript.Run(t, params)
}

func TestOpenLoggerFallsBackToStderr(t *testing.T) {
	// A regular file as HOME makes ~/.autopush impossible to create.
	home := filepath.Join(t.TempDir(), "home")
	if err := os.WriteFile(home, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)
	t.Setenv("AUTOPUSH_VERBOSE", "")

	var stderr bytes.Buffer
	log, closeLog := openLogger(&stderr)
	defer closeLog()

	log.Info("batch finished", "pushed", 1)
	out := stderr.String()
	if !strings.Contains(out, "log file unavailable") || !strings.Contains(out, "batch finished") {
		t.Errorf("stderr = %q, expected the fallback warning and later records", out)
	}
}

func TestOpenLoggerWritesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AUTOPUSH_VERBOSE", "")

	var stderr bytes.Buffer
	log, closeLog := openLogger(&stderr)
	log.Info("batch finished")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(home, ".autopush", "autopush.log"))
	if err != nil || !bytes.Contains(data, []byte("batch finished")) {
		t.Errorf("log file = %q (%v), expected the record", data, err)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, expected nothing outside verbose mode", stderr.String())
	}
}

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"autopush": main,
	})
}

func testSetupFunc() func(env *testscript.Env) error {
	return func(env *testscript.Env) error {
		// Every script gets its own home, config and git identity.
		envhelpers.SetEnvVars(&env.Vars,
			"HOME", env.WorkDir,
			"AUTOPUSH_CONFIG", filepath.Join(env.WorkDir, "autopush.yaml"),
			"GIT_AUTHOR_NAME", "autopush",
			"GIT_AUTHOR_EMAIL", "autopush@example.com",
			"GIT_COMMITTER_NAME", "autopush",
			"GIT_COMMITTER_EMAIL", "autopush@example.com",
			"GIT_CONFIG_NOSYSTEM", "1",
		)
		return nil
	}
}

var commonTestScriptsParam = testscript.Params{
	Setup: func(env *testscript.Env) error {
		return testSetupFunc()(env)
	},
	Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
		// gitrepo creates a repository on branch main whose origin is a fresh
		// bare repository next to it, named DIR.git.
		"gitrepo": func(ts *testscript.TestScript, neg bool, args []string) {
			if len(args) != 1 {
				ts.Fatalf("usage: gitrepo DIR")
			}
			dir := ts.MkAbs(args[0])
			remote := dir + ".git"
			ts.Check(ts.Exec("git", "init", "-q", "--bare", remote))
			ts.Check(ts.Exec("git", "init", "-q", "-b", "main", dir))
			ts.Check(ts.Exec("git", "-C", dir, "remote", "add", "origin", remote))
		},
		// writefile creates or truncates a file with the remaining args as content.
		"writefile": func(ts *testscript.TestScript, neg bool, args []string) {
			if len(args) < 1 {
				ts.Fatalf("usage: writefile FILE [TEXT...]")
			}
			filename := ts.MkAbs(args[0])
			text := strings.Join(args[1:], " ")
			if err := os.WriteFile(filename, []byte(text+"\n"), 0o644); err != nil {
				ts.Fatalf("%v", err)
			}
		},
	},
}
