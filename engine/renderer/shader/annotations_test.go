package shader

import (
	"strings"
	"testing"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantType AnnotationType
		wantNil  bool
		wantErr  string
	}{
		{name: "plain line", line: "let x = 1.0;", wantNil: true},
		{name: "ordinary comment", line: "// just a note", wantNil: true},
		{name: "include", line: "  //@splat:include splat", wantType: AnnotationTypeInclude},
		{name: "define", line: "//@splat:define RADIX_BASE", wantType: AnnotationTypeDefine},
		{name: "group", line: "//@splat:group 0 3 storage_read_write sorting array<atomic_u32>", wantType: AnnotationTypeBindingGroup},
		{name: "empty", line: "//@splat:", wantErr: "empty"},
		{name: "unknown type", line: "//@splat:texture foo", wantErr: "unknown @splat annotation type"},
		{name: "unknown include", line: "//@splat:include material", wantErr: "unknown struct type"},
		{name: "include arity", line: "//@splat:include splat entry", wantErr: "exactly one argument"},
		{name: "group arity", line: "//@splat:group 0 1 storage_read splats", wantErr: "five arguments"},
		{name: "bad group", line: "//@splat:group x 1 storage_read splats array<splat>", wantErr: "invalid group number"},
		{name: "negative binding", line: "//@splat:group 0 -1 storage_read splats array<splat>", wantErr: "invalid binding number"},
		{name: "bad space", line: "//@splat:group 0 1 storage_private splats array<splat>", wantErr: "unknown address space"},
		{name: "bad resource", line: "//@splat:group 0 1 storage_read splats array<texture>", wantErr: "unknown resource type"},
		{name: "array in uniform", line: "//@splat:group 0 1 storage_uniform splats array<splat>", wantErr: "uniform address space"},
		{name: "read-only atomic", line: "//@splat:group 0 1 storage_read sorting array<atomic_u32>", wantErr: "storage_read_write"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("parseAnnotation(%q) error = nil, want %q", tt.line, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("parseAnnotation(%q) error = %v, want containing %q", tt.line, err, tt.wantErr)
				}
				if !strings.HasPrefix(err.Error(), "line 7:") {
					t.Errorf("parseAnnotation(%q) error = %v, want line prefix", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAnnotation(%q) unexpected error: %v", tt.line, err)
			}
			if tt.wantNil {
				if a != nil {
					t.Errorf("parseAnnotation(%q) = %+v, want nil", tt.line, a)
				}
				return
			}
			if a == nil {
				t.Fatalf("parseAnnotation(%q) = nil", tt.line)
			}
			if a.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", a.Type, tt.wantType)
			}
			if a.Line != 7 {
				t.Errorf("Line = %d, want 7", a.Line)
			}
		})
	}
}

func TestAnnotationResource(t *testing.T) {
	a, err := parseAnnotation("//@splat:group 1 4 storage_read_write entries_src array<entry>", 1)
	if err != nil {
		t.Fatalf("parseAnnotation: %v", err)
	}
	if *a.Group != 1 || *a.Binding != 4 {
		t.Errorf("group/binding = %d/%d, want 1/4", *a.Group, *a.Binding)
	}
	if a.Args[0] != AnnotationArgStorageTypeReadWrite || a.Args[1] != "entries_src" {
		t.Errorf("Args = %v", a.Args)
	}
	res, isArray := a.Resource()
	if res != AnnotationArgEntry || !isArray {
		t.Errorf("Resource() = (%q, %v), want (%q, true)", res, isArray, AnnotationArgEntry)
	}

	u, err := parseAnnotation("//@splat:group 0 0 storage_uniform uniforms uniforms", 1)
	if err != nil {
		t.Fatalf("parseAnnotation: %v", err)
	}
	res, isArray = u.Resource()
	if res != AnnotationArgUniforms || isArray {
		t.Errorf("Resource() = (%q, %v), want (%q, false)", res, isArray, AnnotationArgUniforms)
	}

	inc := Annotation{Type: AnnotationTypeInclude, Args: []AnnotationArg{AnnotationArgSplat}}
	if res, _ := inc.Resource(); res != "" {
		t.Errorf("include Resource() = %q, want empty", res)
	}
}
