// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package validation

import (
	"strings"
	"sync"
	"testing"

	"github.com/tomtom215/inkwell/internal/apperr"
)

type uploadRequest struct {
	Name     string `validate:"required,notblank,max=255,filename"`
	MimeType string `validate:"required,mediatype"`
	SHA256   string `validate:"required,len=64,hexadecimal"`
	Size     uint64 `validate:"gt=0"`
}

type unlockRequest struct {
	ArticleID string `json:"id" validate:"required"`
	Password  string `json:"password" validate:"required,alphanum,min=6,max=32"`
}

func validUpload() uploadRequest {
	return uploadRequest{
		Name:     "photo.png",
		MimeType: "image/png",
		SHA256:   strings.Repeat("ab", 32),
		Size:     12,
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	var wg sync.WaitGroup
	seen := make(chan interface{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- GetValidator()
		}()
	}
	wg.Wait()
	close(seen)

	first := GetValidator()
	for v := range seen {
		if v != first {
			t.Fatal("GetValidator() returned different instances")
		}
	}
}

func TestValidateStruct_Upload(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*uploadRequest)
		wantTag string
	}{
		{"valid", func(*uploadRequest) {}, ""},
		{"blank name", func(r *uploadRequest) { r.Name = "   " }, "notblank"},
		{"slash in name", func(r *uploadRequest) { r.Name = "../etc/passwd" }, "filename"},
		{"backslash in name", func(r *uploadRequest) { r.Name = `a\b.txt` }, "filename"},
		{"dot dot", func(r *uploadRequest) { r.Name = ".." }, "filename"},
		{"long name", func(r *uploadRequest) { r.Name = strings.Repeat("x", 256) }, "max"},
		{"bad mime", func(r *uploadRequest) { r.MimeType = "not a mime" }, "mediatype"},
		{"mime with params", func(r *uploadRequest) { r.MimeType = "text/plain; charset=utf-8" }, ""},
		{"short hash", func(r *uploadRequest) { r.SHA256 = "abc" }, "len"},
		{"non hex hash", func(r *uploadRequest) { r.SHA256 = strings.Repeat("zz", 32) }, "hexadecimal"},
		{"zero size", func(r *uploadRequest) { r.Size = 0 }, "gt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validUpload()
			tt.mutate(&req)

			err := ValidateStruct(&req)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateStruct() = nil, want %s failure", tt.wantTag)
			}
			if got := err.Errors()[0].Tag(); got != tt.wantTag {
				t.Errorf("tag = %s, want %s (%v)", got, tt.wantTag, err)
			}
		})
	}
}

func TestValidateStruct_UnlockPassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"abc123", true},
		{strings.Repeat("a", 32), true},
		{"abc12", false},
		{strings.Repeat("a", 33), false},
		{"abc 123", false},
		{"pässwort", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidateStruct(&unlockRequest{ArticleID: "a1", Password: tt.password})
			if (err == nil) != tt.valid {
				t.Errorf("ValidateStruct(%q) = %v, want valid=%v", tt.password, err, tt.valid)
			}
		})
	}
}

func TestValidateStruct_LogLevel(t *testing.T) {
	type levelRequest struct {
		Level string `validate:"required,loglevel"`
	}

	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"WARN", true},
		{"trace", true},
		{"off", true},
		{"verbose", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := ValidateStruct(&levelRequest{Level: tt.level})
			if tt.valid && err != nil {
				t.Errorf("ValidateStruct(%q) = %v, want nil", tt.level, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("ValidateStruct(%q) = nil, want error", tt.level)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := ValidateStruct(&unlockRequest{ArticleID: "", Password: "abc"})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want errors")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("errors = %d, want 2", len(err.Errors()))
	}

	msg := err.Error()
	for _, want := range []string{"ArticleID is required", "Password must be at least 6 characters"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestToAppError(t *testing.T) {
	req := validUpload()
	req.Name = ""

	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("ValidateStruct() = nil")
	}
	appErr := verr.ToAppError()
	if appErr.Kind != apperr.BadRequest {
		t.Errorf("Kind = %v, want BadRequest", appErr.Kind)
	}
	if appErr.Field != "Name" {
		t.Errorf("Field = %q, want Name", appErr.Field)
	}
	if appErr.Details()["field"] != "Name" {
		t.Errorf("Details() = %v", appErr.Details())
	}

	if err := Validate(&req); !apperr.IsKind(err, apperr.BadRequest) {
		t.Errorf("Validate() = %v, want BadRequest", err)
	}
	valid := validUpload()
	if err := Validate(&valid); err != nil {
		t.Errorf("Validate(valid) = %v", err)
	}
}
