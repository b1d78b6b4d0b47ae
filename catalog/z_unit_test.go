package catalog

import (
	"errors"
	"io"
	"testing"
	"testing/fstest"
)

const cfgA = `
name: TTHH_4b
numbins: 100
scale_factors: {tthh: 1, ttbb: 1}
samples:
  - {label: tthh, class: signal, file: data/tthh.json}
  - {label: ttbb, class: background, scores: [0.1]}
`

const cfgB = `{
  "numbins": 50,
  "scale_factors": {"s": 1, "b": 1},
  "samples": [
    {"label": "s", "class": "signal", "scores": [0.9]},
    {"label": "b", "class": "background", "scores": [0.1]}
  ]
}`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"a.yaml":         {Data: []byte(cfgA)},
		"syst_scan.json": {Data: []byte(cfgB)},
		"README.md":      {Data: []byte("ignored")},
		"data/tthh.json": {Data: []byte(`{"label":"tthh","columns":{"score":[0.7]}}`)},
	}
}

func TestNewAuto(t *testing.T) {
	c, err := NewAuto(testFS())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	names := c.Names()
	if len(names) != 2 || names[0] != "syst_scan" || names[1] != "tthh_4b" {
		t.Fatalf("names = %v", names)
	}
	if _, ok := c.GetByName("  TTHH_4B "); !ok {
		t.Fatalf("lookup must be case-insensitive")
	}
	a, err := c.Analysis("tthh_4b")
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	a.Workers = 8
	*a.BackgroundFloor = 0
	b, _ := c.Analysis("tthh_4b")
	if b.Workers == 8 || b.Floor() != 10 {
		t.Fatalf("Analysis must return an independent copy")
	}
	sums := c.Summaries()
	if sums[1].NumBins != 100 || len(sums[1].Samples) != 2 {
		t.Fatalf("summary = %+v", sums[1])
	}
}

func TestOpen(t *testing.T) {
	c, err := New(testFS())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	f, err := c.Open("./data/tthh.json")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	raw, _ := io.ReadAll(f)
	if len(raw) == 0 {
		t.Fatalf("empty sample file")
	}
	if _, err := c.Open("data/nope.json"); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestRegisterAtomic(t *testing.T) {
	fsys := testFS()
	fsys["broken.yaml"] = &fstest.MapFile{Data: []byte("numbins: -1\n")}
	c, err := New(fsys)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.RegisterAll(); err == nil {
		t.Fatalf("expected error from broken config")
	}
	if len(c.Names()) != 0 {
		t.Fatalf("failed batch must not register anything: %v", c.Names())
	}
	if err := c.Register("a.yaml"); err != nil {
		t.Fatalf("register: %v", err)
	}
	c.Freeze()
	if err := c.Register("syst_scan.json"); err == nil {
		t.Fatalf("frozen catalog must reject registration")
	}
}

func TestDuplicates(t *testing.T) {
	dup := fstest.MapFS{
		"a.yaml": {Data: []byte(cfgA)},
		"b.yml":  {Data: []byte(cfgA)},
	}
	if _, err := NewAuto(dup); !errors.Is(err, ErrDupName) {
		t.Fatalf("want ErrDupName, got %v", err)
	}
	if _, err := New(testFS(), fstest.MapFS{"a.yaml": {Data: []byte(cfgA)}}); err == nil {
		t.Fatalf("expected duplicate file across fs")
	}
	if _, err := New(); err == nil {
		t.Fatalf("expected error without fs")
	}
	c, _ := New(testFS())
	if err := c.Register("data/tthh.json"); err == nil {
		t.Fatalf("nested path must not register as analysis")
	}
}
