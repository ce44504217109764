// Package repository combines the remote gateway and the local stores into the
// operations the use cases consume. Failures crossing this boundary are *domain.Error
// values or wrapped store errors.
package repository
