package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	if got.SecondsLimit != want.SecondsLimit || got.SampleHz != want.SampleHz ||
		got.MaxSamples != want.MaxSamples || got.MapDataDir != want.MapDataDir {
		t.Errorf("got %+v, want defaults %+v", got, want)
	}
	if !*got.Downsample || !*got.Median {
		t.Error("defaults must enable downsampling and the median")
	}
}

func TestLoad_EmptyPathKeepsDefaults(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got.SecondsLimit != 5.0 {
		t.Errorf("seconds_limit = %v, want 5.0", got.SecondsLimit)
	}
}

func TestLoad_PartialFileMerges(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	content := "seconds_limit: 12.5\nmedian: false\n"
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.SecondsLimit != 12.5 {
		t.Errorf("seconds_limit = %v, want 12.5", got.SecondsLimit)
	}
	if *got.Median {
		t.Error("median = true, want overridden false")
	}
	// Untouched fields keep their defaults.
	if got.SampleHz != 30 || got.MaxSamples != 2000 || !*got.Downsample {
		t.Errorf("unset fields changed: %+v", got)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte(":\n\t- nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
