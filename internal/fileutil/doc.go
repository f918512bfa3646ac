// Package fileutil provides directory discovery for txtmerge.
//
// ScanDirectory walks a tree and returns the files whose extension matches
// one of ScanOptions.Extensions (case-insensitive). Results come back in
// filepath.WalkDir order so the same tree always yields the same sequence;
// callers rely on that order for progress percentages and row order.
//
// Entries that cannot be visited below the root are collected in
// ScanResult.Errors and the walk continues. A missing, unreadable or
// non-directory root is returned as an error.
//
// Example:
//
//	result, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{
//	    Extensions:  []string{".txt"},
//	    Recursive:   true,
//	    ExcludeDirs: []string{"processing-results"},
//	})
//	if err != nil {
//	    return err
//	}
//	for _, path := range result.Files {
//	    // ...
//	}
package fileutil
