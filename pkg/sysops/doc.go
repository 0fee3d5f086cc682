// Package sysops wraps the external collaborators the provisioner drives:
// the apt package manager, systemd, pip inside a virtualenv, git, and the
// autotools build chain. Every invocation is a structured program+args
// call (never a shell string), with output redirected to the install
// transcript and failures detected via exit status.
package sysops
