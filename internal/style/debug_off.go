//go:build !richdebug

package style

const debugContracts = false
