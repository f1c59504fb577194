// Package bitmap extracts the per-tuple row sets that drive column group
// encoding.
//
// For a set of columns, Extract scans every row once and groups row indices by
// the tuple of values observed in those columns. The result, a Bitmap, maps
// each distinct tuple to the ascending list of rows where it occurs. It is the
// input of both the size estimator and the column group constructors, so a
// matrix is scanned once per candidate column set.
//
// # Zero tuple
//
// By default (ZeroImplicit) the all-zero tuple is never stored: rows whose
// values are all zero are represented by omission and can be recovered with
// ZeroRows. With ZeroExplicit the all-zero tuple is stored like any other
// tuple. The policy is fixed by configuration, never inferred from data.
//
// # Example
//
//	bm, err := bitmap.Extract([]int{0, 3}, m)
//	if err != nil {
//	    return err
//	}
//	for k := range bm.NumValues() {
//	    fmt.Println(bm.Values(k), bm.Offsets(k))
//	}
package bitmap
