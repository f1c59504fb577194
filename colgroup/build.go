package colgroup

import (
	"fmt"

	"github.com/hupe1980/cla/bitmap"
	"github.com/hupe1980/cla/core"
)

// Build materializes bm as a group of scheme sc. The matrix is not scanned
// again.
func Build(bm *bitmap.Bitmap, sc core.Scheme) (ColGroup, error) {
	switch sc {
	case core.SchemeDDC1:
		g, err := NewDDC1(bm)
		if err != nil {
			return nil, err
		}
		return g, nil
	case core.SchemeDDC2:
		g, err := NewDDC2(bm)
		if err != nil {
			return nil, err
		}
		return g, nil
	case core.SchemeRLE:
		return newRLE(listsOf(bm)), nil
	case core.SchemeOLE:
		return newOLE(listsOf(bm)), nil
	case core.SchemeUncompressed:
		return uncompressedFromBitmap(bm), nil
	default:
		return nil, fmt.Errorf("%w: scheme %d", core.ErrUnsupported, sc)
	}
}
