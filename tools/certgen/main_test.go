package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/clivebixby0/myapt-2/internal/certgen"
)

func TestRun_ReusesExistingCA(t *testing.T) {
	dir := t.TempDir()
	if err := run(dir, []string{"localhost"}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstCA, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	if err != nil {
		t.Fatal(err)
	}
	firstServer, err := os.ReadFile(filepath.Join(dir, "server.crt"))
	if err != nil {
		t.Fatal(err)
	}

	if err := run(dir, []string{"localhost", "10.0.0.5"}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	secondCA, _ := os.ReadFile(filepath.Join(dir, "ca.crt"))
	secondServer, _ := os.ReadFile(filepath.Join(dir, "server.crt"))

	if !bytes.Equal(firstCA, secondCA) {
		t.Error("CA was regenerated")
	}
	if bytes.Equal(firstServer, secondServer) {
		t.Error("server certificate was not reissued")
	}
	if _, err := certgen.LoadCA(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key")); err != nil {
		t.Errorf("LoadCA: %v", err)
	}
}

func TestRun_NoHosts(t *testing.T) {
	if err := run(t.TempDir(), nil); err == nil {
		t.Error("expected an error without hosts")
	}
}

func TestSplitHosts(t *testing.T) {
	got := splitHosts(" localhost, ,127.0.0.1,")
	want := []string{"localhost", "127.0.0.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitHosts = %v; want %v", got, want)
	}
}
