package test

import (
	"testing"

	"github.com/evanw/esbuild-plugin-monaco/internal/helpers"
)

func AssertEqual(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	if observed != expected {
		t.Fatalf("%s != %s", observed, expected)
	}
}

func AssertEqualWithDiff(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	if observed != expected {
		stringA, okA := observed.(string)
		stringB, okB := expected.(string)
		if okA && okB {
			t.Fatal(Diff(stringB, stringA, true))
		} else {
			t.Fatalf("%s != %s", observed, expected)
		}
	}
}

func AssertStrings(t *testing.T, observed []string, expected []string) {
	t.Helper()
	if !helpers.StringArraysEqual(observed, expected) {
		t.Fatalf("[%s] != [%s]",
			helpers.StringArrayToQuotedCommaSeparatedString(observed),
			helpers.StringArrayToQuotedCommaSeparatedString(expected))
	}
}
