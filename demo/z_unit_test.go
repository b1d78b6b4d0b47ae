package demo

import (
	"context"
	"testing"
)

func TestDemoAnalyses(t *testing.T) {
	lab, err := NewLab(nil)
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	names := lab.Names()
	want := []string{"tthh_4b", "tthh_4b_syst", "tthh_weighted"}
	if len(names) != len(want) {
		t.Fatalf("names %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names %v", names)
		}
	}
	outs, err := lab.RunAll(context.Background(), false)
	if err != nil {
		t.Fatalf("run all: %v", err)
	}
	for _, o := range outs {
		if o.Err != nil {
			t.Fatalf("%s: %v", o.Name, o.Err)
		}
		if o.Report.Summary.Background < o.Report.Summary.BackgroundFloor {
			t.Fatalf("%s: floor violated %+v", o.Name, o.Report.Summary)
		}
		if o.Report.Summary.Significance <= 0 {
			t.Fatalf("%s: significance %v", o.Name, o.Report.Summary.Significance)
		}
	}
}
