// Package secrets reads configuration from a secrets directory such as
// /run/secrets, where every file holds one value.
//
// File names map to nested keys like environment variables do: with prefix
// "app_" and separator "__", the file app_db__password sets db.password.
//
// Usage:
//
//	fetcher, err := secrets.NewFetcher("/run/secrets")()
//	if err != nil {
//	    // Handle error: directory missing or unreadable
//	}
//	tree := fetcher.Tree("app_", "__")
package secrets
