// Package core holds the leaf types shared by every cla package: the matrix
// collaborator interfaces, row ranges, the encoding scheme tag and the error
// taxonomy.
package core
