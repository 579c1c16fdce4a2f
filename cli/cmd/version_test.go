package cmd

import (
	"testing"

	"github.com/ardnew/macro/pkg"
)

func TestVersion(t *testing.T) {
	out, _, err := execute(t, Version{}, "")
	if err != nil {
		t.Fatal(err)
	}

	if want := pkg.Name + " " + pkg.Version() + "\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}
