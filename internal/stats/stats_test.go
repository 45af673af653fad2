package stats

import (
	"errors"
	"testing"

	"github.com/jensroland/git-attest/internal/attest"
)

func records(authors ...attest.Author) []attest.Record {
	out := make([]attest.Record, len(authors))
	for i, a := range authors {
		out[i] = attest.Record{
			Commit:   "c1",
			File:     "f.txt",
			Line:     i + 1,
			Author:   a,
			Accepted: a == attest.AuthorAI,
		}
	}
	return out
}

func TestCompute_Conservation(t *testing.T) {
	recs := records(
		attest.AuthorHuman,
		attest.AuthorAI,
		attest.AuthorAI,
		attest.AuthorHuman,
		attest.AuthorHuman,
	)

	cs, err := Compute("c1", recs, 5)
	if err != nil {
		t.Fatal(err)
	}
	if cs.AIAdditions != 2 || cs.HumanAdditions != 3 || cs.AIAccepted != 2 || cs.GitDiffAddedLines != 5 {
		t.Errorf("stats = %+v", cs)
	}
	if cs.AIAdditions+cs.HumanAdditions != cs.GitDiffAddedLines {
		t.Error("conservation law violated")
	}
}

func TestCompute_AllAI(t *testing.T) {
	cs, err := Compute("c1", records(attest.AuthorAI, attest.AuthorAI, attest.AuthorAI), 3)
	if err != nil {
		t.Fatal(err)
	}
	if cs.AIAdditions != 3 || cs.HumanAdditions != 0 || cs.AIAccepted != 3 || cs.GitDiffAddedLines != 3 {
		t.Errorf("stats = %+v", cs)
	}
}

func TestCompute_InconsistencySurfaced(t *testing.T) {
	// Two attested lines but git says three: a reconciliation defect.
	cs, err := Compute("c1", records(attest.AuthorAI, attest.AuthorHuman), 3)
	if err == nil {
		t.Fatal("divergent counts produced no error")
	}

	var ie *InconsistencyError
	if !errors.As(err, &ie) {
		t.Fatalf("error %T, want *InconsistencyError", err)
	}
	if ie.Attested != 2 || ie.Reported != 3 {
		t.Errorf("inconsistency = %+v", ie)
	}

	// Best-effort stats still come back alongside the error.
	if cs.AIAdditions != 1 || cs.HumanAdditions != 1 || cs.GitDiffAddedLines != 3 {
		t.Errorf("stats alongside error = %+v", cs)
	}
}

func TestCompute_EmptyCommit(t *testing.T) {
	cs, err := Compute("c1", nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if cs != (CommitStats{}) {
		t.Errorf("stats = %+v, want zero value", cs)
	}
}
