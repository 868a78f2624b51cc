package pkg

import (
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "vibe"
	if Name != expected {
		t.Errorf("expected Name to be %q, got %q", expected, Name)
	}

	if got := EnvPrefix(); got != "VIBE_" {
		t.Errorf("expected env prefix %q, got %q", "VIBE_", got)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("expected Version to be %q, got %q", content, Version)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("expected Author to contain ardnew, got %v", Author)
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestError_Chain(t *testing.T) {
	errA := errors.New("a.csx: parse error")
	errB := errors.New("b.csx: invalid module path")

	var chain Error
	if chain.Err() != nil {
		t.Fatal("expected empty chain to be nil error")
	}

	chain = chain.Wrap(errA, nil, errB)

	if len(chain) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(chain))
	}

	err := chain.Err()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected chain to match both errors, got %v", err)
	}

	if got, want := err.Error(), "a.csx: parse error: b.csx: invalid module path"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := chain.Join().Error(); got != "a.csx: parse error\nb.csx: invalid module path" {
		t.Errorf("unexpected joined errors %q", got)
	}
}

func TestUnwrapErrors(t *testing.T) {
	inner := errors.New("inner")
	outer := MakeError(inner).Wrapf("outer")

	got := UnwrapErrors(outer)
	if len(got) != 3 || got[0] != inner || got[2].Error() != "inner: outer" {
		t.Errorf("unexpected unwrap order %v", got)
	}

	if UnwrapErrors(nil) != nil {
		t.Error("expected nil chain for nil error")
	}
}

func TestMakeErrorf(t *testing.T) {
	if !errors.Is(MakeErrorf("read failed").Wrap(os.ErrNotExist), os.ErrNotExist) {
		t.Error("expected wrapped error to match")
	}

	if got := MakeErrorf("x=%d", 1).Error(); got != "x=1" {
		t.Errorf("expected %q, got %q", "x=1", got)
	}
}
