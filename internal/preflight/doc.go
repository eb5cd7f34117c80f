// Package preflight provides readiness checks for the filesystem paths and
// database that rolodex depends on. The CLI "rolodex doctor" command runs
// them all and renders the results; individual checks are also usable
// before long operations like a sweep.
package preflight
