package tlsroots

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTestCert writes a self-signed pair valid for localhost and
// 127.0.0.1 and returns its serial number.
func writeTestCert(t *testing.T, certFile, keyFile string, notAfter time.Time) *big.Int {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		t.Fatal(err)
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "sitegate.test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	return serial
}

func testPair(t *testing.T) (string, string) {
	dir := t.TempDir()
	return filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key")
}

func TestNewReloader(t *testing.T) {
	certFile, keyFile := testPair(t)
	serial := writeTestCert(t, certFile, keyFile, time.Now().Add(365*24*time.Hour))

	r, err := NewReloader(certFile, keyFile, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("NewReloader() error = %v", err)
	}

	cert, err := r.GetCertificate(nil)
	if err != nil {
		t.Fatalf("GetCertificate() error = %v", err)
	}
	if cert.Leaf == nil || cert.Leaf.SerialNumber.Cmp(serial) != 0 {
		t.Error("GetCertificate() did not return the loaded pair")
	}

	cfg := r.TLSConfig()
	if cfg.MinVersion != tls.VersionTLS12 || cfg.GetCertificate == nil {
		t.Errorf("TLSConfig() = %+v", cfg)
	}
}

func TestNewReloader_Errors(t *testing.T) {
	certFile, keyFile := testPair(t)

	if _, err := NewReloader(certFile, keyFile); err == nil {
		t.Error("expected error for missing files")
	}

	os.WriteFile(certFile, []byte("not a cert"), 0o644)
	os.WriteFile(keyFile, []byte("not a key"), 0o600)
	if _, err := NewReloader(certFile, keyFile); err == nil {
		t.Error("expected error for invalid PEM")
	}
}

func TestReloader_FailedReloadKeepsPrevious(t *testing.T) {
	certFile, keyFile := testPair(t)
	serial := writeTestCert(t, certFile, keyFile, time.Now().Add(time.Hour))

	r, err := NewReloader(certFile, keyFile, WithLogger(discardLogger()))
	if err != nil {
		t.Fatal(err)
	}

	os.WriteFile(keyFile, []byte("garbage"), 0o600)
	if err := r.Reload(); err == nil {
		t.Fatal("Reload() should fail on a broken key")
	}
	if r.Certificate().Leaf.SerialNumber.Cmp(serial) != 0 {
		t.Error("failed reload replaced the certificate")
	}
}

func TestReloader_RunPicksUpRotation(t *testing.T) {
	certFile, keyFile := testPair(t)
	first := writeTestCert(t, certFile, keyFile, time.Now().Add(time.Hour))

	r, err := NewReloader(certFile, keyFile,
		WithLogger(discardLogger()),
		WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Let the watcher register the directory before rotating.
	time.Sleep(100 * time.Millisecond)
	second := writeTestCert(t, certFile, keyFile, time.Now().Add(2*time.Hour))
	if second.Cmp(first) == 0 {
		t.Skip("serial collision")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if r.Certificate().Leaf.SerialNumber.Cmp(second) == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("certificate was not reloaded after rotation")
}

func TestLoadPool(t *testing.T) {
	certFile, keyFile := testPair(t)
	writeTestCert(t, certFile, keyFile, time.Now().Add(time.Hour))

	if _, err := LoadPool(""); err != nil {
		t.Errorf("LoadPool(\"\") error = %v", err)
	}
	if _, err := LoadPool(certFile); err != nil {
		t.Errorf("LoadPool(cert) error = %v", err)
	}

	_, err := LoadPool(keyFile)
	if !errors.Is(err, ErrNoCertsFound) {
		t.Errorf("LoadPool(key) error = %v, want ErrNoCertsFound", err)
	}
	if _, err := LoadPool(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Error("expected error for missing CA file")
	}
}

func TestClientConfig(t *testing.T) {
	cfg, err := ClientConfig("/does/not/exist.pem", true)
	if err != nil {
		t.Fatalf("insecure ClientConfig() error = %v", err)
	}
	if !cfg.InsecureSkipVerify {
		t.Error("insecure config should skip verification")
	}

	certFile, keyFile := testPair(t)
	writeTestCert(t, certFile, keyFile, time.Now().Add(time.Hour))
	cfg, err = ClientConfig(certFile, false)
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}
	if cfg.InsecureSkipVerify || cfg.RootCAs == nil {
		t.Errorf("ClientConfig() = %+v", cfg)
	}
}

func TestReloader_Handshake(t *testing.T) {
	certFile, keyFile := testPair(t)
	writeTestCert(t, certFile, keyFile, time.Now().Add(time.Hour))

	r, err := NewReloader(certFile, keyFile, WithLogger(discardLogger()))
	if err != nil {
		t.Fatal(err)
	}

	ln, err := tls.Listen("tcp", "127.0.0.1:0", r.TLSConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.(*tls.Conn).Handshake()
		conn.Close()
	}()

	clientCfg, err := ClientConfig(certFile, false)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := tls.Dial("tcp", ln.Addr().String(), clientCfg)
	if err != nil {
		t.Fatalf("handshake with CA file failed: %v", err)
	}
	conn.Close()
}
