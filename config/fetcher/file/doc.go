// Package file reads configuration files for the config package.
//
// A Fetcher reads its file once, when constructed, and serves copies of the
// cached bytes afterwards, so a configuration provided through fx does not
// change under a running application. Read is the uncached variant used by
// the loader.
//
// Usage:
//
//	fetcher, err := file.NewFetcher("/etc/app/config.yaml")()
//	if err != nil {
//	    // Handle error: file not found, permission denied, path is directory, etc.
//	}
//	data, err := fetcher.Fetch()
//
// Use errors.Is(err, file.ErrPathIsDirectory) to detect a directory path.
package file
