// Package domain defines the core data structures of launchbook and the
// contracts of its persistence collaborators.
//
// It contains the launch, favorite and booking models shared by every layer,
// the error taxonomy that crosses the repository boundary, and the store
// interfaces (FavoritesStore, SecretStore) that the db package implements.
// The package has no dependencies on transport, storage or presentation code.
package domain
