package updater

import (
	"context"

	"github.com/google/uuid"
)

type runIDKey struct{}

// WithRunID tags ctx with the id RunBatch logs under.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the id set by WithRunID, if any.
func RunIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// RunBatch updates every repository in order and returns one Result per
// entry, in input order. Failures are recorded and the batch moves on; there
// are no retries.
func (u *Updater) RunBatch(ctx context.Context, repos []string, message, branch string) []Result {
	runID, ok := RunIDFrom(ctx)
	if !ok {
		runID = uuid.NewString()
	}
	log := u.log.With("run", runID)
	log.Info("batch started", "repos", len(repos))

	results := make([]Result, 0, len(repos))
	for _, repo := range repos {
		results = append(results, u.update(ctx, log, repo, message, branch))
	}

	s := Summarize(results)
	log.Info("batch finished", "pushed", s.Pushed, "unchanged", s.Unchanged, "failed", s.Failed)
	return results
}

// Summary counts outcomes of a batch.
type Summary struct {
	Total     int
	Pushed    int
	Unchanged int
	Failed    int
}

// Summarize counts results by outcome.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case Success:
			s.Pushed++
		case NoChanges:
			s.Unchanged++
		default:
			s.Failed++
		}
	}
	return s
}

// OK reports whether no repository failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}
