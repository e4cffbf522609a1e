// Package logsetup configures the standard logger for every binary that
// imports it for side effects.
package logsetup

import "log"

func init() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
}
