package organize

import (
	"fmt"
	"os"
	"path/filepath"

	serr "dirsort/internal/errors"
	"dirsort/pkg/types"
)

const maxCollisionAttempts = 1000

// uniqueDestination returns the first free sibling of dest named
// stem_NNN.ext, counting from 001.
func uniqueDestination(dest string) (string, error) {
	dir := filepath.Dir(dest)
	stem, ext := types.SplitName(filepath.Base(dest))

	for counter := 1; counter <= maxCollisionAttempts; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%03d%s", stem, counter, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}

	return "", serr.NewFileError(
		fmt.Sprintf("could not generate unique name after %d attempts", maxCollisionAttempts),
		dest, serr.CollisionUnresolved, nil)
}
