package vocabulary

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/preprocess"
)

func TestBuildFirstSeenOrder(t *testing.T) {
	docs := []string{"wifi not working", "cannot connect wifi", "printer error"}

	v, err := Build(docs, DefaultCap, preprocess.New(preprocess.Options{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"wifi", "not", "working", "cannot", "connect", "printer", "error"}
	if !reflect.DeepEqual(v.Terms(), want) {
		t.Errorf("Terms = %v, want %v", v.Terms(), want)
	}
	if v.Size() != 7 {
		t.Errorf("Size = %d, want 7", v.Size())
	}
	if i, ok := v.Index("printer"); !ok || i != 5 {
		t.Errorf("Index(printer) = %d, %v", i, ok)
	}
	if _, ok := v.Index("missing"); ok {
		t.Error("unexpected index for missing term")
	}
}

func TestBuildCapUsesFrequency(t *testing.T) {
	docs := []string{
		"alpha beta gamma",
		"gamma delta",
		"gamma beta epsilon",
	}

	v, err := Build(docs, 3, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// gamma=3, beta=2, then alpha/delta/epsilon tie at 1 and alpha was seen first.
	want := []string{"gamma", "beta", "alpha"}
	if !reflect.DeepEqual(v.Terms(), want) {
		t.Errorf("Terms = %v, want %v", v.Terms(), want)
	}
}

func TestBuildNeverExceedsCap(t *testing.T) {
	var docs []string
	for i := 0; i < 50; i++ {
		docs = append(docs, fmt.Sprintf("term%d shared term%d", i, i+100))
	}

	v, err := Build(docs, 10, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v.Size() > 10 {
		t.Errorf("Size = %d, exceeds cap", v.Size())
	}
	terms := v.Terms()
	slices.Sort(terms)
	if len(slices.Compact(terms)) != v.Size() {
		t.Error("vocabulary contains duplicates")
	}
	if v.Term(0) != "shared" {
		t.Errorf("most frequent term should lead, got %q", v.Term(0))
	}
}

func TestBuildInvalidCap(t *testing.T) {
	for _, limit := range []int{0, -1} {
		if _, err := Build([]string{"x"}, limit, nil); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("cap %d: expected ErrInvalidConfig, got %v", limit, err)
		}
	}
}

func TestFromTermsDedup(t *testing.T) {
	v := FromTerms([]string{"wifi", "error", "wifi", "printer"})
	want := []string{"wifi", "error", "printer"}
	if !reflect.DeepEqual(v.Terms(), want) {
		t.Errorf("Terms = %v, want %v", v.Terms(), want)
	}
}

func TestInfo(t *testing.T) {
	var terms []string
	for i := 0; i < 30; i++ {
		terms = append(terms, fmt.Sprintf("t%02d", i))
	}
	info := FromTerms(terms).Info()

	if info.Size != 30 {
		t.Errorf("Size = %d", info.Size)
	}
	if len(info.TopWords) != InfoWords || info.TopWords[0] != "t00" {
		t.Errorf("TopWords = %v", info.TopWords)
	}
	if len(info.BottomWords) != InfoWords || info.BottomWords[InfoWords-1] != "t29" || info.BottomWords[0] != "t10" {
		t.Errorf("BottomWords = %v", info.BottomWords)
	}

	small := FromTerms([]string{"a", "b"}).Info()
	if len(small.TopWords) != 2 || len(small.BottomWords) != 2 {
		t.Errorf("small Info = %+v", small)
	}
}

func TestCounterTop(t *testing.T) {
	c := NewCounter()
	for _, term := range []string{"b", "a", "c", "a", "c", "", "d"} {
		c.Add(term)
	}

	if got := c.Top(2); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Top(2) = %v", got)
	}
	if got := c.Top(0); !reflect.DeepEqual(got, []string{"a", "c", "b", "d"}) {
		t.Errorf("Top(0) = %v", got)
	}
	if c.Len() != 4 || c.Count("a") != 2 || c.Count("") != 0 {
		t.Errorf("Len=%d Count(a)=%d", c.Len(), c.Count("a"))
	}
}
