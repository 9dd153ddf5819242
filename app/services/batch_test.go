package services

import (
	"os"
	"path/filepath"
	"testing"

	"vizbot/app"
)

func TestLoadRequests(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("one.json", `{"audio_path":"a.mp3","image_path":"i.png","output_path":"out/one.mp4","format":"main","preset":"waves"}`)
	write("two.json", `{"audio_path":"b.mp3","image_path":"j.png","format":"short","preset":"spectrum"}`)
	write("notes.txt", "not a request")

	reqs, err := LoadRequests(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].OutputPath != "out/one.mp4" {
		t.Errorf("explicit output path not kept: %q", reqs[0].OutputPath)
	}
	// Requests without an output path get one derived from the file name.
	if filepath.Base(reqs[1].OutputPath) != "two.mp4" {
		t.Errorf("derived output path = %q, want .../two.mp4", reqs[1].OutputPath)
	}
	if reqs[1].Format != app.FormatShort {
		t.Errorf("format = %s, want short", reqs[1].Format)
	}
}

func TestLoadRequestsBadJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRequests(dir); err == nil {
		t.Error("expected error for malformed request file")
	}
}

func TestLoadRequestsEmptyDir(t *testing.T) {
	reqs, err := LoadRequests(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 0 {
		t.Errorf("expected no requests, got %d", len(reqs))
	}
}
