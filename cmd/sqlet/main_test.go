package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/sqlet/core/sqlet"
)

func TestInitPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "store.db")
	payload := []byte("the quick brown fox jumps over the lazy dog")

	file := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(file, payload, 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	if err := (&InitCmd{DB: dbPath}).Run(); err != nil {
		t.Fatalf("init: %v", err)
	}

	putOut := captureStdout(t, func() {
		if err := (&PutCmd{DB: dbPath, File: file}).Run(); err != nil {
			t.Fatalf("put: %v", err)
		}
	})
	id := string(bytes.TrimSpace(putOut))
	if id == "" {
		t.Fatal("put printed no id")
	}

	getOut := captureStdout(t, func() {
		if err := (&GetCmd{DB: dbPath, ID: id}).Run(); err != nil {
			t.Fatalf("get: %v", err)
		}
	})
	if !bytes.Equal(getOut, payload) {
		t.Errorf("expected %q, got %q", payload, getOut)
	}

	listOut := captureStdout(t, func() {
		if err := (&ListCmd{DB: dbPath}).Run(); err != nil {
			t.Fatalf("list: %v", err)
		}
	})
	if !bytes.Contains(listOut, []byte(id)) {
		t.Errorf("list output missing id %s: %q", id, listOut)
	}
}

func TestGetUnknownID(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.db")
	if err := (&InitCmd{DB: dbPath}).Run(); err != nil {
		t.Fatalf("init: %v", err)
	}

	err := (&GetCmd{DB: dbPath, ID: "no-such-id"}).Run()
	if err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestPutIsAtomic(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "store.db")
	if err := (&InitCmd{DB: dbPath}).Run(); err != nil {
		t.Fatalf("init: %v", err)
	}

	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("aa"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	captureStdout(t, func() {
		if err := (&PutCmd{DB: dbPath, File: file}).Run(); err != nil {
			t.Fatalf("put: %v", err)
		}
	})

	db, err := sqlet.Open(dbPath, sqlet.OpenReadOnly)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	stmt, err := db.Execute("select count(*) from files")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	defer stmt.Finalize()
	if row, err := stmt.Step(); err != nil || !row {
		t.Fatalf("step: row=%v err=%v", row, err)
	}
	n, err := sqlet.Get[int64](stmt, 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored file, got %d", n)
	}
}

func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fn()

	w.Close()
	out := <-done
	os.Stdout = orig
	return out
}
