package utils

import (
	"errors"
	"strings"
	"testing"

	"cloudfiles/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestComputePath(t *testing.T) {
	tests := []struct {
		name       string
		folderName string
		parentPath *string
		want       string
	}{
		{
			name:       "root level folder",
			folderName: "docs",
			parentPath: nil,
			want:       "/docs",
		},
		{
			name:       "nested folder",
			folderName: "reports",
			parentPath: strPtr("/docs"),
			want:       "/docs/reports",
		},
		{
			name:       "name is trimmed",
			folderName: "  Q1 2024 ",
			parentPath: strPtr("/docs/reports"),
			want:       "/docs/reports/Q1 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputePath(tt.folderName, tt.parentPath); got != tt.want {
				t.Errorf("ComputePath(%q) = %q, want %q", tt.folderName, got, tt.want)
			}
		})
	}
}

func TestIsDescendantPath(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		ancestor  string
		want      bool
	}{
		{"same path", "/a/b", "/a/b", true},
		{"direct child", "/a/b/c", "/a/b", true},
		{"deep descendant", "/a/b/c/d", "/a", true},
		{"sibling sharing a prefix", "/a/bc", "/a/b", false},
		{"parent is not a descendant", "/a", "/a/b", false},
		{"unrelated", "/x/y", "/a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDescendantPath(tt.candidate, tt.ancestor); got != tt.want {
				t.Errorf("IsDescendantPath(%q, %q) = %v, want %v", tt.candidate, tt.ancestor, got, tt.want)
			}
		})
	}
}

func TestRewritePrefix(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		oldPrefix string
		newPrefix string
		want      string
	}{
		{"rename root folder", "/docs/reports", "/docs", "/documents", "/documents/reports"},
		{"move under another folder", "/docs/reports/q1", "/docs/reports", "/archive/reports", "/archive/reports/q1"},
		{"exact match", "/docs", "/docs", "/files", "/files"},
		{"prefix absent leaves path alone", "/other/x", "/docs", "/files", "/other/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewritePrefix(tt.path, tt.oldPrefix, tt.newPrefix); got != tt.want {
				t.Errorf("RewritePrefix(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidateFolderName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "docs", false},
		{"letters digits spaces hyphens underscores", "Q1 2024_final-v2", false},
		{"surrounding spaces allowed", "  reports  ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"slash", "a/b", true},
		{"dot", "report.v2", true},
		{"tab", "a\tb", true},
		{"unicode letter", "café", true},
		{"max length", strings.Repeat("a", 255), false},
		{"too long", strings.Repeat("a", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFolderName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFolderName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNormalizeFolderPath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"docs/reports", "/docs/reports"},
		{"/docs/reports/", "/docs/reports"},
		{"docs", "/docs"},
		{"", "/"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeFolderPath(tt.raw); got != tt.want {
				t.Errorf("NormalizeFolderPath(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
