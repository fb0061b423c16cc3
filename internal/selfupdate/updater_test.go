package selfupdate

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetNameFor(t *testing.T) {
	tests := []struct {
		goos    string
		goarch  string
		want    string
		wantErr bool
	}{
		{"darwin", "arm64", "bonk_Darwin_all.tar.gz", false},
		{"darwin", "amd64", "bonk_Darwin_all.tar.gz", false},
		{"linux", "amd64", "bonk_Linux_x86_64.tar.gz", false},
		{"linux", "arm64", "bonk_Linux_arm64.tar.gz", false},
		{"linux", "386", "bonk_Linux_i386.tar.gz", false},
		{"windows", "amd64", "bonk_Windows_x86_64.zip", false},
		{"windows", "arm64", "bonk_Windows_arm64.zip", false},
		{"freebsd", "amd64", "", true},
		{"linux", "mips", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := assetNameFor(tt.goos, tt.goarch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChecksums(t *testing.T) {
	data := []byte(`abc123  bonk_Darwin_all.tar.gz
def456  bonk_Linux_x86_64.tar.gz

malformed-line
`)
	got := parseChecksums(data)
	assert.Equal(t, map[string]string{
		"bonk_Darwin_all.tar.gz":   "abc123",
		"bonk_Linux_x86_64.tar.gz": "def456",
	}, got)
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("hello world")
	h := sha256.Sum256(data)
	goodHex := hex.EncodeToString(h[:])

	assert.NoError(t, verifyChecksum(data, goodHex))

	err := verifyChecksum(data, "deadbeef")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChecksum)
}

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     name,
		Mode:     0755,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestExtractBinary(t *testing.T) {
	want := []byte("fake binary contents")
	archive := buildTarGz(t, "bonk", want)

	got, err := extractBinary(archive, "bonk_Linux_x86_64.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = extractBinary(buildTarGz(t, "other", want), "bonk_Linux_x86_64.tar.gz")
	assert.Error(t, err)
}

func TestApplyUpdate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "bonk")
	require.NoError(t, os.WriteFile(target, []byte("old binary"), 0755))

	newBinary := []byte("new binary")
	hash := sha256.Sum256(newBinary)
	require.NoError(t, applyUpdate(newBinary, target, hash[:]))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, newBinary, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestCheck(t *testing.T) {
	t.Run("update available", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/abhisek/bonk/releases/latest", r.URL.Path)
			fmt.Fprint(w, `{"tag_name":"v2.0.0","html_url":"https://github.com/abhisek/bonk/releases/tag/v2.0.0"}`)
		}))
		defer server.Close()

		c := NewChecker(WithBaseURL(server.URL))
		result, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
		require.NoError(t, err)
		assert.True(t, result.UpdateAvailable)
		assert.Equal(t, "v2.0.0", result.LatestVersion)
	})

	t.Run("already latest", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"tag_name":"v1.0.0","html_url":""}`)
		}))
		defer server.Close()

		c := NewChecker(WithBaseURL(server.URL))
		result, err := c.Check(context.Background(), &CheckInput{Version: "1.0.0"})
		require.NoError(t, err)
		assert.False(t, result.UpdateAvailable)
	})

	t.Run("non-semver current version", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"tag_name":"v2.0.0","html_url":""}`)
		}))
		defer server.Close()

		c := NewChecker(WithBaseURL(server.URL))
		result, err := c.Check(context.Background(), &CheckInput{Version: "(devel)"})
		require.NoError(t, err)
		assert.True(t, result.UpdateAvailable)
	})

	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewChecker(WithBaseURL(server.URL))
		_, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
		assert.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	// Update resolves the asset for the host platform; the end-to-end cases
	// only run where that resolves to the linux/amd64 archive built below.
	hostAsset, err := assetName()
	if err != nil || hostAsset != "bonk_Linux_x86_64.tar.gz" {
		t.Skipf("end-to-end update test requires linux/amd64, got asset %q", hostAsset)
	}

	newBinary := []byte("#!/bin/sh\necho bonk v2\n")
	archive := buildTarGz(t, "bonk", newBinary)
	archiveHash := sha256.Sum256(archive)
	checksums := fmt.Sprintf("%s  bonk_Linux_x86_64.tar.gz\n", hex.EncodeToString(archiveHash[:]))

	newServer := func(failDownload, badChecksum bool) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/repos/abhisek/bonk/releases/latest":
				fmt.Fprint(w, `{"tag_name":"v2.0.0","html_url":"https://github.com/abhisek/bonk/releases/tag/v2.0.0"}`)
			case "/abhisek/bonk/releases/download/v2.0.0/bonk_Linux_x86_64.tar.gz":
				if failDownload {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_, _ = w.Write(archive)
			case "/abhisek/bonk/releases/download/v2.0.0/checksums.txt":
				if badChecksum {
					fmt.Fprint(w, "deadbeef  bonk_Linux_x86_64.tar.gz\n")
					return
				}
				fmt.Fprint(w, checksums)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	}

	newTestChecker := func(t *testing.T, server *httptest.Server) (*Checker, string) {
		t.Helper()
		dir := t.TempDir()
		target := filepath.Join(dir, "bonk")
		require.NoError(t, os.WriteFile(target, []byte("old binary"), 0755))
		c := NewChecker(
			WithBaseURL(server.URL),
			WithDownloadBaseURL(server.URL),
			withExecPath(func() (string, error) { return target, nil }),
		)
		return c, target
	}

	t.Run("happy path", func(t *testing.T) {
		server := newServer(false, false)
		defer server.Close()

		c, target := newTestChecker(t, server)

		var stages []string
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"check", "download", "verify", "extract", "apply", "done"}, stages)

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, newBinary, got)
	})

	t.Run("dev build", func(t *testing.T) {
		server := newServer(false, false)
		defer server.Close()

		c, _ := newTestChecker(t, server)
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		server := newServer(false, false)
		defer server.Close()

		c, _ := newTestChecker(t, server)
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v2.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		server := newServer(false, true)
		defer server.Close()

		c, target := newTestChecker(t, server)
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrChecksum)

		got, readErr := os.ReadFile(target)
		require.NoError(t, readErr)
		assert.Equal(t, []byte("old binary"), got, "binary must be untouched on checksum failure")
	})

	t.Run("download failure", func(t *testing.T) {
		server := newServer(true, false)
		defer server.Close()

		c, _ := newTestChecker(t, server)
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.Error(t, err)
	})
}
