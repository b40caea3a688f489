package main

import "flag"

// flagSet wraps flag.FlagSet so callers control error handling instead of
// the standard package calling os.Exit on a bad flag.
type flagSet struct {
	*flag.FlagSet
}

// newCustomFlagSet creates a flagSet with ContinueOnError behavior.
func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}
