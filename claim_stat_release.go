//go:build !debug

package taskfarm

func statClaimAttempt() {}
func statClaimMiss()    {}
func statWakeup()       {}
func statIdleReturn()   {}
