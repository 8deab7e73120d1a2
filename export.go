package cardsheet

import (
	"fmt"
	"os"

	"github.com/alnah/go-cardsheet/internal/fileutil"
)

// OutputPerm is the file mode of written documents.
const OutputPerm os.FileMode = 0o644

// WriteFile writes the document to path through a temp file and rename, so a
// failed write never leaves a truncated PDF behind.
func (r *Result) WriteFile(path string) error {
	if r == nil || len(r.PDF) == 0 {
		return fmt.Errorf("%w: %s: empty document", ErrWriteOutput, path)
	}
	if err := fileutil.WriteFileAtomic(path, r.PDF, OutputPerm); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}
	return nil
}
