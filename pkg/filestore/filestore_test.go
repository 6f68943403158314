package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseS3(t *testing.T) {
	tests := []struct {
		conn    string
		want    [4]string
		wantErr bool
	}{
		{"key:secret@reports.eu-west-1", [4]string{"key", "secret", "reports", "eu-west-1"}, false},
		{":@reports.tebi", [4]string{"", "", "reports", "tebi"}, false},
		{"key:secret", [4]string{}, true},
		{"keysecret@reports.eu-west-1", [4]string{}, true},
		{"key:secret@reports", [4]string{}, true},
		{"key:secret@reports.a.b", [4]string{}, true},
	}
	for _, tt := range tests {
		key, secret, bucket, region, err := parseS3(tt.conn)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseS3(%q) err = %v; want error %v", tt.conn, err, tt.wantErr)
			continue
		}
		if got := [4]string{key, secret, bucket, region}; !tt.wantErr && got != tt.want {
			t.Errorf("parseS3(%q) = %v; want %v", tt.conn, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		typ  string
		conn string
	}{
		{"ftp", "somewhere"},
		{"local", ""},
		{"telegram", "token"},
		{"telegram", "token@chat"},
		{"telegram", "token@1234"},
	}
	for _, tt := range tests {
		if _, err := New(tt.typ, tt.conn, "", false, nil); err == nil {
			t.Errorf("New(%q, %q) err = nil; want error", tt.typ, tt.conn)
		}
	}
}

func TestLocal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "summary.yaml")
	if err := os.WriteFile(src, []byte("models: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := New("local", filepath.Join(dir, "out"), "", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Type() != "local" {
		t.Fatalf("Type() = %q; want local", s.Type())
	}
	if err := s.Upload(context.Background(), src, "summary.yaml"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "summary.yaml")); err != nil {
		t.Fatalf("Stat() err = %v; want nil", err)
	}
}
