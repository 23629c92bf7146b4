package main

const (
	ExitSuccess     = 0
	ExitError       = 1 // connection, query or I/O failure
	ExitConfigError = 2 // invalid configuration or flags
)
