package lang

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTypeSet(t *testing.T) {
	s := NewTypeSet("List", "Dictionary")

	if !s.Exists("List") {
		t.Error("expected List to exist")
	}

	if s.Exists("list") {
		t.Error("expected lookups to be case-sensitive")
	}

	if diff := cmp.Diff([]string{"Dictionary", "List"}, s.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnyOracle(t *testing.T) {
	o := AnyOracle(nil, NewTypeSet("A"), OracleFunc(func(n string) bool { return n == "B" }))

	for name, want := range map[string]bool{"A": true, "B": true, "C": false} {
		if got := o.Exists(name); got != want {
			t.Errorf("Exists(%q): expected %v, got %v", name, want, got)
		}
	}
}

func TestCachedOracle_CachesLookups(t *testing.T) {
	var calls atomic.Int32

	errLoad := errors.New("cannot load assembly")

	resolver := ResolverFunc(func(name string) (bool, error) {
		calls.Add(1)

		switch name {
		case "Widget":
			return true, nil
		case "Broken":
			return true, errLoad
		default:
			return false, nil
		}
	})

	cache := NewTypeCache()
	o := CachedOracle(resolver, cache)

	for range 3 {
		if !o.Exists("Widget") {
			t.Error("expected Widget to exist")
		}

		if o.Exists("Broken") {
			t.Error("expected a failed lookup to report an unknown type")
		}

		if o.Exists("row") {
			t.Error("expected row to be unknown")
		}
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 resolver calls, got %d", got)
	}

	if cache.Len() != 3 {
		t.Errorf("expected 3 cached names, got %d", cache.Len())
	}

	if diff := cmp.Diff([]string{"Broken"}, cache.Failed()); diff != "" {
		t.Errorf("Failed() mismatch (-want +got):\n%s", diff)
	}

	cache.Reset()
	o.Exists("Widget")

	if got := calls.Load(); got != 4 {
		t.Errorf("expected a lookup after Reset, got %d calls", got)
	}
}

func TestCachedOracle_SharedCacheConcurrent(t *testing.T) {
	var calls atomic.Int32

	resolver := ResolverFunc(func(name string) (bool, error) {
		calls.Add(1)

		return name == "Known", nil
	})

	cache := NewTypeCache()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			o := CachedOracle(resolver, cache)
			for range 100 {
				if !o.Exists("Known") || o.Exists("Unknown") {
					t.Error("unexpected oracle answer")

					return
				}
			}
		}()
	}

	wg.Wait()

	if cache.Len() != 2 {
		t.Errorf("expected 2 cached names, got %d", cache.Len())
	}

	// Racing goroutines may each miss before the first store.
	if got := calls.Load(); got < 2 || got > 32 {
		t.Errorf("expected between 2 and 32 resolver calls, got %d", got)
	}
}

func TestExprOracle(t *testing.T) {
	o, err := NewExprOracle(`name endsWith "Service" || name in ["List", "Dictionary"]`)
	if err != nil {
		t.Fatalf("NewExprOracle: %v", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"List", true},
		{"Dictionary", true},
		{"ClockService", true},
		{"row", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := o.Exists(tt.name); got != tt.want {
			t.Errorf("Exists(%q): expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestExprOracle_InvalidExpression(t *testing.T) {
	for _, src := range []string{`name +`, `len(name)`} {
		if _, err := NewExprOracle(src); !errors.Is(err, ErrOracle) {
			t.Errorf("NewExprOracle(%q): expected ErrOracle, got %v", src, err)
		}
	}
}
