package archive

import (
	"context"
	"testing"

	"github.com/zintix-labs/cutlab/stats"
)

func report(name string, z float64) *stats.ScanReport {
	return &stats.ScanReport{
		Summary: &stats.SummaryReport{Analysis: name, NumBins: 100, Index: 42, Threshold: 0.42, Significance: z, Signal: 3, Background: 12},
		Samples: []*stats.SampleReport{{Label: "tthh", Class: "signal", Events: 10, Passed: 4}},
	}
}

func TestSaveList(t *testing.T) {
	st, err := Open(Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	id1, err := st.Save(ctx, report("a", 1.1))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	id2, _ := st.Save(ctx, report("b", 2.2))
	if id1 == id2 || len(id1) != 36 {
		t.Fatalf("run ids must be distinct uuids: %s %s", id1, id2)
	}

	all, err := st.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].RunID != id2 {
		t.Fatalf("list must be newest first: %+v", all)
	}
	only, _ := st.List(ctx, "a", 10)
	if len(only) != 1 || only[0].Significance != 1.1 || only[0].Index != 42 {
		t.Fatalf("filtered list: %+v", only)
	}
	lim, _ := st.List(ctx, "", 1)
	if len(lim) != 1 {
		t.Fatalf("limit not applied")
	}

	r, err := st.Report(ctx, id1)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.Summary.Threshold != 0.42 || r.Samples[0].Efficiency != 0.4 {
		t.Fatalf("report round trip: %+v", r.Summary)
	}
	if _, err := st.Report(ctx, "missing"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	st, _ := Open(Memory)
	defer st.Close()
	if _, err := st.Save(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil report")
	}
}
