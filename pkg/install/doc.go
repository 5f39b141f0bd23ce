// Package install executes install plans and removes installed packages.
//
// A [Planner] walks a resolved plan under an exclusive lock on the install
// directory. For every spec it fetches the archive through a [Fetcher] and
// hands it to an [Installer]. Specs that are already installed are skipped,
// except the last one in the plan: the explicitly requested package is
// always (re)installed. Fetch failures abort the remaining plan unless
// Force is set, in which case the spec is skipped. Packages installed before
// a failure stay in place.
//
// After the plan ran, registered [PostInstallHook] functions receive the
// resolution result and the specs that were actually installed.
//
// [FSInstaller] unpacks archives into <install_dir>/packages, records them in
// an [installed.Store] and writes shell wrappers for executables.
// [Uninstaller] reverses that.
package install
