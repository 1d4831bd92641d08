// Package files finds CSV price files on disk and loads them as uploads.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/base")
//	found, err := discovery.FindCSVFiles("precios")
//	uploads, err := files.LoadUploads(files.Paths(found), 32<<20)
package files
