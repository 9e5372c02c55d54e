package style

// contractViolation reports caller misuse. Debug builds (-tags richdebug)
// panic immediately; release builds return the error unchanged.
func contractViolation(err error) error {
	if debugContracts {
		panic(err)
	}
	return err
}
