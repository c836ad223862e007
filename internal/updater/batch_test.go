package updater

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	apperrors "github.com/mcdonaldj/autopush/internal/errors"
	"github.com/mcdonaldj/autopush/internal/mocks"
)

func TestRunBatchIsolatesFailures(t *testing.T) {
	repos := []string{"/r0", "/r1", "/r2", "/r3"}
	u, git, _ := newFixture(repos...)
	git.PushErrors["/r2"] = apperrors.NewGitError("push", nil, errors.New("exit status 1"), "rejected")

	results := u.RunBatch(context.Background(), repos, "sync", "main")

	if len(results) != len(repos) {
		t.Fatalf("got %d results, expected %d", len(results), len(repos))
	}
	for i, r := range results {
		if r.Repo != repos[i] {
			t.Errorf("results[%d].Repo = %q, expected %q", i, r.Repo, repos[i])
		}
		want := Success
		if i == 2 {
			want = Failure
		}
		if r.Outcome != want {
			t.Errorf("results[%d].Outcome = %v, expected %v", i, r.Outcome, want)
		}
	}

	// Commands must be issued strictly repo by repo, in list order.
	var order []string
	for _, c := range git.Calls {
		if len(order) == 0 || order[len(order)-1] != c.Repo {
			order = append(order, c.Repo)
		}
	}
	if strings.Join(order, ",") != strings.Join(repos, ",") {
		t.Errorf("processing order = %v, expected %v", order, repos)
	}
}

func TestRunBatchMissingRepoScenario(t *testing.T) {
	u, _, _ := newFixture("/tmp/r1")

	results := u.RunBatch(context.Background(), []string{"/tmp/r1", "/tmp/r2"}, "sync", "main")

	if results[0].Outcome != Success {
		t.Errorf("r1 outcome = %v, expected Success", results[0].Outcome)
	}
	if results[1].Outcome != Failure || !errors.Is(results[1].Err, apperrors.ErrInvalidPath) {
		t.Errorf("r2 result = %+v, expected PathError failure", results[1])
	}
}

func TestRunBatchEmpty(t *testing.T) {
	u, git, _ := newFixture()

	results := u.RunBatch(context.Background(), nil, "m", "main")

	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if len(git.Calls) != 0 {
		t.Errorf("expected no git calls, got %v", git.Calls)
	}
}

func TestRunBatchLogsRunID(t *testing.T) {
	var buf bytes.Buffer
	git := mocks.NewMockGitClient()
	fsys := mocks.NewMockFileSystem()
	u := New(git, fsys, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	ctx := WithRunID(context.Background(), "run-123")
	u.RunBatch(ctx, []string{"/missing"}, "m", "main")

	out := buf.String()
	if strings.Count(out, "run=run-123") < 3 {
		t.Errorf("expected start, repo and finish records tagged with run id, got:\n%s", out)
	}
	if !strings.Contains(out, "failed=1") {
		t.Errorf("expected summary with failed=1, got:\n%s", out)
	}
}

func TestRunIDFrom(t *testing.T) {
	if _, ok := RunIDFrom(context.Background()); ok {
		t.Error("expected no run id on a bare context")
	}
	id, ok := RunIDFrom(WithRunID(context.Background(), "abc"))
	if !ok || id != "abc" {
		t.Errorf("RunIDFrom = %q, %v", id, ok)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		{Outcome: Success},
		{Outcome: NoChanges},
		{Outcome: Failure},
		{Outcome: Success},
	})
	want := Summary{Total: 4, Pushed: 2, Unchanged: 1, Failed: 1}
	if s != want {
		t.Errorf("Summarize = %+v, expected %+v", s, want)
	}
	if s.OK() {
		t.Error("OK() should be false with a failure")
	}
	if !Summarize(nil).OK() {
		t.Error("empty batch should be OK")
	}
}
