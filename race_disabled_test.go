//go:build !race

package taskfarm

const raceEnabled = false
