package model

// Security is a tracked security eligible for price synchronization.
// ID is the host application's opaque unique identifier (zuniqueid).
type Security struct {
	ID     string
	Symbol string
}
