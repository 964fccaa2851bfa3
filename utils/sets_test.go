package utils

import (
	"reflect"
	"testing"
)

func TestContains(t *testing.T) {
	set := []string{"a", "b"}
	if !Contains(set, "a") || Contains(set, "c") {
		t.Fatalf("membership broken")
	}
	if Contains(nil, "a") {
		t.Fatalf("nil set contains nothing")
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("got %v", got)
	}
	if out := Dedupe(nil); out == nil || len(out) != 0 {
		t.Fatalf("nil input must yield empty non-nil slice, got %v", out)
	}
}
