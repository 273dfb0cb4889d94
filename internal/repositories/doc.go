// Package repositories implements SQLite persistence for the client's local state.
//
// [LocalStorage] is a string key/value table that stands in for a browser's
// localStorage. The token store keeps the access and refresh tokens in it;
// the schema comes from the migrations in the shared package.
package repositories
