package main

import (
	"strings"
	"testing"
)

func TestResolveID(t *testing.T) {
	ids := []string{
		"0190a1b2-0000-7000-8000-00000000aaaa",
		"0190a1b2-0000-7000-8000-00000000bbbb",
		"0190a1b2-0000-7000-8000-0000000cbbbb",
	}
	idOf := func(s string) string { return s }

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr string
	}{
		{name: "exact", arg: ids[1], want: ids[1]},
		{name: "unique suffix", arg: "aaaa", want: ids[0]},
		{name: "longer suffix disambiguates", arg: "0cbbbb", want: ids[2]},
		{name: "trims spaces", arg: "  aaaa ", want: ids[0]},
		{name: "ambiguous", arg: "bbbb", wantErr: "matches 2 tasks"},
		{name: "no match", arg: "zzzz", wantErr: "no task matches"},
		{name: "empty", arg: " ", wantErr: "task id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveID("task", tt.arg, ids, idOf)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("resolveID(%q) error = %v, want containing %q", tt.arg, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveID(%q) unexpected error: %v", tt.arg, err)
			}
			if got != tt.want {
				t.Errorf("resolveID(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken("ghp_1234567890abcd"); got != "ghp_…abcd" {
		t.Errorf("maskToken = %q", got)
	}
	if got := maskToken("short"); got != "****" {
		t.Errorf("maskToken(short) = %q", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"task", "goal", "reading", "tag", "export", "import", "sync", "serve", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, path := range [][]string{{"serve"}, {"export"}, {"import"}, {"sync", "push"}, {"sync", "pull"}} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil {
			t.Fatalf("Find(%v): %v", path, err)
		}
		if cmd.Annotations[skipPull] == "" {
			t.Errorf("%v should skip the automatic pull", path)
		}
	}
}
