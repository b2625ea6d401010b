//go:build race

package taskfarm

const raceEnabled = true
