package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbowen/verify-release/internal/domain/entities"
	"github.com/rbowen/verify-release/internal/domain/interfaces"
)

// Key, payload and detached signature generated with GnuPG (ed25519)
// for test use only.
const (
	testPayload = "release candidate payload\n"

	testKeys = `-----BEGIN PGP PUBLIC KEY BLOCK-----

mDMEaoxJkxYJKwYBBAHaRw8BAQdAnTc8TbHzwhEMr7RvDrSv7y7/Adwh/ciXUCX3
RsLRxY20J1JlbGVhc2UgVGVzdCA8cmVsZWFzZS10ZXN0QGV4YW1wbGUub3JnPoiQ
BBMWCAA4FiEEoT1t65QFy6sYBwltZAgP6731XWIFAmqMSZMCGwMFCwkIBwIGFQoJ
CAsCBBYCAwECHgECF4AACgkQZAgP6731XWKcuwD8DEHYZNRviucAFIE+yWaaXVwY
zlyAJvpot50HGD0Z4VABANxbtG0DHR2niq+tOchbvUCoKgMkcHakbtpVS+tYfSwP
=uBTd
-----END PGP PUBLIC KEY BLOCK-----
`

	testSignature = `-----BEGIN PGP SIGNATURE-----

iHUEABYIAB0WIQShPW3rlAXLqxgHCW1kCA/rvfVdYgUCaoxJkwAKCRBkCA/rvfVd
YmTkAQD0rr8J9sTMjKu3eqHjFKeZxleXeqRHGE7IqdNvbCh58wEA186s12k/+YIQ
0ASxLNRo1dJhgc1jeW/L9B9YK+tOrAo=
=4dHA
-----END PGP SIGNATURE-----
`
)

func newTestSignatureVerifier() *SignatureVerifier {
	log := &interfaces.NoOpLogger{}
	return NewSignatureVerifier(NewFetcher(log), log)
}

// newLocalKeysVerifier routes the KEYS fallback fetch to a local
// server so fail-path tests never touch the network.
func newLocalKeysVerifier(t *testing.T, handler http.HandlerFunc) *SignatureVerifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	v := newTestSignatureVerifier()
	v.deriveURL = func(string) (string, error) { return server.URL + "/KEYS", nil }
	return v
}

// writeSignedArchive lays out archive, .asc and KEYS in dir
func writeSignedArchive(t *testing.T, dir string, withKeys bool) string {
	t.Helper()
	archive := filepath.Join(dir, "apache-foo-1.0.tgz")
	if err := os.WriteFile(archive, []byte(testPayload), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive+".asc", []byte(testSignature), 0600); err != nil {
		t.Fatal(err)
	}
	if withKeys {
		if err := os.WriteFile(filepath.Join(dir, "KEYS"), []byte(testKeys), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return archive
}

func TestVerifySignature_NoSidecar(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "apache-foo-1.0.tgz")
	if err := os.WriteFile(archive, []byte(testPayload), 0600); err != nil {
		t.Fatal(err)
	}

	got := newTestSignatureVerifier().VerifySignature(context.Background(), archive,
		"https://dist.apache.org/repos/dist/dev/foo/1.0/")
	if got != entities.StatusUnknown {
		t.Errorf("VerifySignature() = %v, want unknown when no .asc exists", got)
	}
}

func TestVerifySignature_Pass(t *testing.T) {
	dir := t.TempDir()
	archive := writeSignedArchive(t, dir, true)

	got := newTestSignatureVerifier().VerifySignature(context.Background(), archive,
		"https://dist.apache.org/repos/dist/dev/foo/1.0/")
	if got != entities.StatusPass {
		t.Errorf("VerifySignature() = %v, want pass with the signer's key in KEYS", got)
	}
}

func TestVerifySignature_TamperedArchive(t *testing.T) {
	dir := t.TempDir()
	archive := writeSignedArchive(t, dir, true)
	if err := os.WriteFile(archive, []byte("tampered payload\n"), 0600); err != nil {
		t.Fatal(err)
	}

	v := newLocalKeysVerifier(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	got := v.VerifySignature(context.Background(), archive,
		"https://dist.apache.org/repos/dist/dev/foo/1.0/")
	if got != entities.StatusFail {
		t.Errorf("VerifySignature() = %v, want fail for tampered bytes", got)
	}
}

func TestVerifySignature_NoKeysFails(t *testing.T) {
	dir := t.TempDir()
	archive := writeSignedArchive(t, dir, false)

	// No KEYS bundle means the keyring is empty and verification
	// cannot pass; the best-effort bundle fetch that follows must not
	// change the outcome
	v := newLocalKeysVerifier(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, testKeys)
	})
	got := v.VerifySignature(context.Background(), archive,
		"https://dist.apache.org/repos/dist/dev/foo/1.0/")
	if got != entities.StatusFail {
		t.Errorf("VerifySignature() = %v, want fail without any keys", got)
	}
	// The fetched bundle lands next to the archive for the next run
	if _, err := os.Stat(filepath.Join(dir, "KEYS")); err != nil {
		t.Errorf("fetched KEYS bundle missing: %v", err)
	}
}

func TestDeriveKeysURL(t *testing.T) {
	tests := []struct {
		name       string
		stagingURL string
		want       string
		wantErr    bool
	}{
		{
			name:       "top-level project",
			stagingURL: "https://dist.apache.org/repos/dist/dev/foo/1.0/",
			want:       "https://downloads.apache.org/foo/KEYS",
		},
		{
			name:       "incubator project",
			stagingURL: "https://dist.apache.org/repos/dist/dev/incubator/foo/1.0/",
			want:       "https://downloads.apache.org/incubator/foo/KEYS",
		},
		{
			name:       "no dev segment",
			stagingURL: "https://dist.apache.org/repos/dist/release/foo/1.0/",
			wantErr:    true,
		},
		{
			name:       "dev is the last segment",
			stagingURL: "https://dist.apache.org/repos/dist/dev",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveKeysURL(tt.stagingURL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DeriveKeysURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DeriveKeysURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchKeyBundle_BacksUpExistingBundle(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "KEYS"), []byte("old bundle"), 0600); err != nil {
		t.Fatal(err)
	}

	v := newLocalKeysVerifier(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "fresh bundle")
	})
	v.fetchKeyBundle(context.Background(), "https://dist.apache.org/repos/dist/dev/foo/1.0/", dir)

	backup, err := os.ReadFile(filepath.Join(dir, "KEYS.bak"))
	if err != nil {
		t.Fatalf("KEYS.bak missing: %v", err)
	}
	if string(backup) != "old bundle" {
		t.Errorf("KEYS.bak content = %q, want the previous bundle", backup)
	}

	// The rename happened before the write, so the fetched bundle
	// replaces KEYS rather than being skipped as already present
	fresh, err := os.ReadFile(filepath.Join(dir, "KEYS"))
	if err != nil {
		t.Fatalf("KEYS missing after fetch: %v", err)
	}
	if string(fresh) != "fresh bundle" {
		t.Errorf("KEYS content = %q, want the fetched bundle", fresh)
	}
}
