// Package colgroup implements compressed column groups.
//
// A column group stores a disjoint subset of a matrix's columns over all
// rows. Four compressed encodings share one contract:
//
//   - DDC1 / DDC2: a tuple dictionary plus one uint8 or uint16 code per row.
//   - RLE: per tuple, the runs of consecutive rows where it occurs.
//   - OLE: per tuple, segmented lists of row offsets with a skip index.
//
// Uncompressed groups hold plain row-major values for columns that did not
// compress well.
//
// All kernels follow the same pattern: aggregate once per distinct tuple,
// then scatter through the codes, runs or offsets. Groups are immutable;
// ScalarOp returns a new group that shares the encoding of its source.
package colgroup
