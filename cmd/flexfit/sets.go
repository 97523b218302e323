package main

import (
	"fmt"
	"strings"
)

// setsFlag collects repeated -set REPSxWEIGHT values, e.g. -set 10x62.5.
// The raw parts are validated later, by the recorder or editor.
type setsFlag []rawSet

type rawSet struct {
	reps   string
	weight string
}

func (s *setsFlag) String() string {
	parts := make([]string, 0, len(*s))
	for _, set := range *s {
		parts = append(parts, set.reps+"x"+set.weight)
	}
	return strings.Join(parts, ",")
}

func (s *setsFlag) Set(value string) error {
	reps, weight, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		return fmt.Errorf("set [%s]: want REPSxWEIGHT, like 10x60", value)
	}
	*s = append(*s, rawSet{reps: reps, weight: weight})
	return nil
}
