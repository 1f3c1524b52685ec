package dap

type gniDAPError int

const (
	processingErr gniDAPError = iota
	parseErr
	launchErr
	modulesErr
)

func (e gniDAPError) String() string {
	return []string{"Processing error", "Parse error", "Failed to launch", "Failed to list modules"}[e]
}
