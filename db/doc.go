// Package db provides the SQLite persistence layer of launchbook.
//
// A single Repository implements both domain.FavoritesStore and
// domain.SecretStore on top of one connection pool:
//   - favorites live in the favorite_launches table and can be watched;
//     every committed mutation wakes all active watchers, which re-run their
//     query and emit the fresh result (notify.go);
//   - session secrets live in the secret table, with names digested and
//     values sealed by keys derived from a caller supplied master key (cipher.go);
//   - the schema is managed by goose migrations embedded from migrations/.
package db
