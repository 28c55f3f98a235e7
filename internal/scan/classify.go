package scan

// NeedsScanning is the single most important short-circuit in the
// pipeline: it must run before any other component, and a false
// return guarantees no network call and no manifest read happen.
//
// Scanning applies only to install and dlx verbs, and never to dry
// runs: a dry-run flag at any argument position disables scanning
// regardless of what else is on the command line.
func NeedsScanning(req Request) bool {
	if !req.isInstall() && !req.isDlx() {
		return false
	}
	for _, arg := range req.RawArgs {
		for _, dry := range req.DryRunFlags {
			if arg == dry {
				return false
			}
		}
	}
	return true
}
