package pathutils

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/mod/modfile"
)

// FindModuleRoot returns the absolute path to the module's root directory by
// searching for a go.mod file in dir and its parent directories.
// An empty dir stands for the current working directory.
// Returns an error if the directory cannot be resolved,
// if filesystem operations fail, or if no go.mod file is found.
func FindModuleRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to get current working directory")
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", dir)
	}
	for {
		goModPath := filepath.Join(dir, "go.mod")
		fi, err := os.Stat(goModPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return "", errors.Wrapf(err, "failed to stat %s", goModPath)
			}
			// File doesn't exist, continue searching parent directories
		} else if !fi.IsDir() {
			return dir, nil
		}

		d := filepath.Dir(dir)
		if d == dir {
			break
		}
		dir = d
	}
	return "", errors.New("go.mod not found in directory tree")
}

// ModulePath returns the module path declared in the go.mod file of the module rooted at root.
func ModulePath(root string) (string, error) {
	goModPath := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", goModPath)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", errors.Errorf("%s does not declare a module path", goModPath)
	}
	return path, nil
}
