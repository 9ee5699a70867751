package main

import "testing"

func TestWindowFlagsOnRootAndWindow(t *testing.T) {
	for _, sub := range []string{"", "window"} {
		watch, metricsAddr = false, ""

		args := []string{"--watch", "--metrics-addr=:9100"}
		if sub != "" {
			args = append([]string{sub}, args...)
		}
		cmd, rest, err := newRootCmd().Find(args)
		if err != nil {
			t.Fatalf("%q: find failed: %v", sub, err)
		}
		if err := cmd.ParseFlags(rest); err != nil {
			t.Fatalf("%q: parse failed: %v", sub, err)
		}
		if !watch || metricsAddr != ":9100" {
			t.Errorf("%q: expected watch and metrics addr, got %v %q", sub, watch, metricsAddr)
		}
	}
}

func TestPreviewAcceptsWatch(t *testing.T) {
	watch = false
	cmd, rest, err := newRootCmd().Find([]string{"preview", "--watch"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !watch {
		t.Error("expected --watch on preview")
	}
}
