// Package main generates a development CA and a server certificate signed by
// it, writing them to files under the output directory. An existing CA in
// that directory is reused so clients keep trusting it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/clivebixby0/myapt-2/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := run(*dir, splitHosts(*hosts)); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
	fmt.Printf("Server: TLS_CERT=%s TLS_KEY=%s\n", filepath.Join(*dir, "server.crt"), filepath.Join(*dir, "server.key"))
	fmt.Printf("Client: -ca %s\n", filepath.Join(*dir, "ca.crt"))
}

func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	caCert := filepath.Join(dir, "ca.crt")
	caKey := filepath.Join(dir, "ca.key")

	ca, err := loadOrCreateCA(caCert, caKey)
	if err != nil {
		return err
	}
	certPEM, keyPEM, err := ca.IssueServer(hosts)
	if err != nil {
		return err
	}
	return certgen.WritePair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"), certPEM, keyPEM)
}

func loadOrCreateCA(certPath, keyPath string) (*certgen.CA, error) {
	if _, err := os.Stat(certPath); err == nil {
		return certgen.LoadCA(certPath, keyPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	ca, certPEM, keyPEM, err := certgen.NewCA("myapt development CA")
	if err != nil {
		return nil, err
	}
	if err := certgen.WritePair(certPath, keyPath, certPEM, keyPEM); err != nil {
		return nil, err
	}
	return ca, nil
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
